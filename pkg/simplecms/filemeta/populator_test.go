package filemeta_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/filemeta"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

var policy = simplecms.AutoFillProperty{
	Alias:               "umbracoFile",
	WidthFieldAlias:     "umbracoWidth",
	HeightFieldAlias:    "umbracoHeight",
	LengthFieldAlias:    "umbracoBytes",
	ExtensionFieldAlias: "umbracoExtension",
}

func newMedia() *simplecms.ContentEntity {
	ct := &simplecms.ContentType{Alias: "image", Kind: simplecms.KindMedia}
	m := &simplecms.ContentEntity{ID: uuid.New(), Kind: simplecms.KindMedia, ContentType: ct}
	for i, alias := range []string{"umbracoFile", "umbracoWidth", "umbracoHeight", "umbracoBytes", "umbracoExtension"} {
		pt := &simplecms.PropertyType{ID: i + 1, Alias: alias}
		ct.PropertyTypes = append(ct.PropertyTypes, pt)
		m.Properties = append(m.Properties, &simplecms.Property{ID: pt.ID, PropertyType: pt})
	}
	return m
}

func value(t *testing.T, m *simplecms.ContentEntity, alias string) interface{} {
	t.Helper()
	p, ok := m.Property(alias)
	require.True(t, ok, alias)
	return p.Value.Interface()
}

func encode(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case "gif":
		require.NoError(t, gif.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestPopulate_Images(t *testing.T) {
	ctx := context.Background()
	store := memorystorage.New()
	p := filemeta.New(store)

	for _, format := range []string{"png", "jpg", "gif"} {
		t.Run(format, func(t *testing.T) {
			data := encode(t, format, 40, 30)
			key := "media/1/photo." + format
			require.NoError(t, store.Upload(ctx, key, bytes.NewReader(data)))

			m := newMedia()
			require.NoError(t, p.Populate(ctx, policy, "/"+key, m))

			assert.Equal(t, 40, value(t, m, "umbracoWidth"))
			assert.Equal(t, 30, value(t, m, "umbracoHeight"))
			assert.Equal(t, int64(len(data)), value(t, m, "umbracoBytes"))
			assert.Equal(t, format, value(t, m, "umbracoExtension"))
		})
	}
}

func TestPopulate_NonImage(t *testing.T) {
	ctx := context.Background()
	store := memorystorage.New()
	require.NoError(t, store.Upload(ctx, "docs/Report.PDF", bytes.NewReader([]byte("%PDF-1.4"))))

	m := newMedia()
	m.SetValue("umbracoWidth", simplecms.ScalarValue(10))
	require.NoError(t, filemeta.New(store).Populate(ctx, policy, "docs/Report.PDF", m))

	assert.Nil(t, value(t, m, "umbracoWidth"))
	assert.Nil(t, value(t, m, "umbracoHeight"))
	assert.Equal(t, int64(8), value(t, m, "umbracoBytes"))
	assert.Equal(t, "pdf", value(t, m, "umbracoExtension"))
}

func TestPopulate_CorruptImage(t *testing.T) {
	ctx := context.Background()
	store := memorystorage.New()
	require.NoError(t, store.Upload(ctx, "broken.png", bytes.NewReader([]byte("not a png"))))

	m := newMedia()
	require.NoError(t, filemeta.New(store).Populate(ctx, policy, "broken.png", m))

	assert.Nil(t, value(t, m, "umbracoWidth"))
	assert.Equal(t, int64(9), value(t, m, "umbracoBytes"))
	assert.Equal(t, "png", value(t, m, "umbracoExtension"))
}

func TestPopulate_URLPrefix(t *testing.T) {
	ctx := context.Background()
	store := memorystorage.New()
	require.NoError(t, store.Upload(ctx, "1042/cat.png", bytes.NewReader(encode(t, "png", 2, 3))))

	p := filemeta.New(store, filemeta.WithURLPrefix("/media/"))
	assert.Equal(t, "1042/cat.png", p.ObjectKey("/media/1042/cat.png"))

	m := newMedia()
	require.NoError(t, p.Populate(ctx, policy, "/media/1042/cat.png", m))
	assert.Equal(t, 2, value(t, m, "umbracoWidth"))
}

func TestPopulate_ResetsWhenFileMissing(t *testing.T) {
	ctx := context.Background()
	p := filemeta.New(memorystorage.New())

	for name, ref := range map[string]string{"empty": "", "missing": "/media/404.jpg"} {
		t.Run(name, func(t *testing.T) {
			m := newMedia()
			m.SetValue("umbracoWidth", simplecms.ScalarValue(10))
			m.SetValue("umbracoExtension", simplecms.ScalarValue("jpg"))

			require.NoError(t, p.Populate(ctx, policy, ref, m))

			for _, alias := range []string{"umbracoWidth", "umbracoHeight", "umbracoBytes", "umbracoExtension"} {
				assert.Nil(t, value(t, m, alias), alias)
			}
		})
	}
}

func TestPopulate_SkipsUndeclaredTargets(t *testing.T) {
	ctx := context.Background()
	store := memorystorage.New()
	require.NoError(t, store.Upload(ctx, "a.gif", bytes.NewReader(encode(t, "gif", 1, 1))))

	m := newMedia()
	partial := policy
	partial.WidthFieldAlias = "notOnThisType"
	partial.HeightFieldAlias = ""

	require.NoError(t, filemeta.New(store).Populate(ctx, partial, "a.gif", m))
	assert.Nil(t, value(t, m, "umbracoWidth"))
	assert.Nil(t, value(t, m, "umbracoHeight"))
	assert.Equal(t, "gif", value(t, m, "umbracoExtension"))
	_, ok := m.Property("notOnThisType")
	assert.False(t, ok)
}

type failingStore struct {
	simplecms.BlobStore
	calls int
	err   error
}

func (f *failingStore) GetObjectMeta(ctx context.Context, key string) (*simplecms.ObjectMeta, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f.calls++
	return nil, f.err
}

func TestPopulate_PropagatesStorageErrors(t *testing.T) {
	ioErr := errors.New("connection reset")
	store := &failingStore{err: ioErr}

	m := newMedia()
	m.SetValue("umbracoWidth", simplecms.ScalarValue(10))
	err := filemeta.New(store).Populate(context.Background(), policy, "a.jpg", m)
	assert.ErrorIs(t, err, ioErr)

	// targets are left as they were
	assert.Equal(t, 10, value(t, m, "umbracoWidth"))
}

func TestPopulate_CircuitBreaker(t *testing.T) {
	ioErr := errors.New("connection reset")
	store := &failingStore{err: ioErr}
	p := filemeta.New(store, filemeta.WithCircuitBreaker(filemeta.BreakerConfig{
		MaxFailures:         2,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := p.Populate(ctx, policy, "a.jpg", newMedia())
		assert.ErrorIs(t, err, ioErr)
	}

	err := p.Populate(ctx, policy, "a.jpg", newMedia())
	assert.ErrorIs(t, err, filemeta.ErrCircuitOpen)
	assert.Equal(t, 2, store.calls)
}

func TestPopulate_MissingFilesDoNotTripBreaker(t *testing.T) {
	store := &failingStore{err: simplecms.ErrObjectNotFound}
	p := filemeta.New(store, filemeta.WithCircuitBreaker(filemeta.BreakerConfig{
		MaxFailures: 1,
		Timeout:     time.Minute,
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Populate(context.Background(), policy, "gone.jpg", newMedia()))
	}
	assert.Equal(t, 3, store.calls)
}

func TestPopulate_CanceledContext(t *testing.T) {
	store := &failingStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := filemeta.New(store).Populate(ctx, policy, "a.jpg", newMedia())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.calls)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpeg", filemeta.Extension("a/b/Photo.JPEG"))
	assert.Equal(t, "", filemeta.Extension("noext"))
	assert.Equal(t, "gz", filemeta.Extension("archive.tar.gz"))
}
