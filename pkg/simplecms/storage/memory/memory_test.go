package memory_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "media/1/page.html"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData))
		assert.NoError(t, err)
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.True(t, strings.HasPrefix(meta.ContentType, "text/html"))
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "media/1/blob", strings.NewReader("x")))
		meta, err := backend.GetObjectMeta(ctx, "media/1/blob")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, testData, string(downloadedData))
	})

	t.Run("Delete", func(t *testing.T) {
		key := "media/1/deleted.txt"
		require.NoError(t, backend.Upload(ctx, key, strings.NewReader(testData)))

		require.NoError(t, backend.Delete(ctx, key))

		_, err := backend.GetObjectMeta(ctx, key)
		assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := backend.GetObjectMeta(ctx, "nope")
		assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
		_, err = backend.Download(ctx, "nope")
		assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, "nope"), simplecms.ErrObjectNotFound)
	})
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = backend.Upload(ctx, "shared.txt", strings.NewReader("data"))
			_, _ = backend.GetObjectMeta(ctx, "shared.txt")
		}()
	}
	wg.Wait()

	meta, err := backend.GetObjectMeta(ctx, "shared.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)
}
