// Package filemeta derives file metadata (dimensions, size, extension) from
// uploaded files and writes it onto the properties named by an auto-fill
// policy.
package filemeta

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/sony/gobreaker"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// Populator implements simplecms.FileMetadataPopulator over a BlobStore.
type Populator struct {
	store     simplecms.BlobStore
	urlPrefix string
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// Option configures a Populator.
type Option func(*Populator)

// WithURLPrefix strips prefix from references before they are resolved to
// object keys, e.g. "/media/".
func WithURLPrefix(prefix string) Option {
	return func(p *Populator) {
		p.urlPrefix = prefix
	}
}

// WithCircuitBreaker routes storage calls through a circuit breaker.
func WithCircuitBreaker(config BreakerConfig) Option {
	return func(p *Populator) {
		p.breaker = p.newBreaker(config)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Populator) {
		p.logger = logger
	}
}

// New creates a Populator reading from store.
func New(store simplecms.BlobStore, opts ...Option) *Populator {
	p := &Populator{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Populate sets the policy's target properties from the file the reference
// points at. An empty reference or a missing file resets the targets instead.
func (p *Populator) Populate(ctx context.Context, policy simplecms.AutoFillProperty, reference string, entity *simplecms.ContentEntity) error {
	key := p.ObjectKey(reference)
	if key == "" {
		p.Reset(policy, entity)
		return nil
	}

	meta, err := p.objectMeta(ctx, key)
	if errors.Is(err, simplecms.ErrObjectNotFound) {
		p.logger.Info("referenced file not found, resetting metadata", "key", key, "content_id", entity.ID)
		p.Reset(policy, entity)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %q: %w", key, err)
	}

	ext := Extension(key)
	width, height := simplecms.AbsentValue(), simplecms.AbsentValue()
	if imageExtensions[ext] {
		cfg, err := p.imageConfig(ctx, key)
		switch {
		case errors.Is(err, simplecms.ErrObjectNotFound):
			p.Reset(policy, entity)
			return nil
		case errors.Is(err, image.ErrFormat):
			p.logger.Warn("file is not a decodable image", "key", key, "content_id", entity.ID)
		case err != nil:
			return fmt.Errorf("read %q: %w", key, err)
		default:
			width = simplecms.ScalarValue(cfg.Width)
			height = simplecms.ScalarValue(cfg.Height)
		}
	}

	set(entity, policy.WidthFieldAlias, width)
	set(entity, policy.HeightFieldAlias, height)
	set(entity, policy.LengthFieldAlias, simplecms.ScalarValue(meta.Size))
	set(entity, policy.ExtensionFieldAlias, simplecms.ScalarValue(ext))
	return nil
}

// Reset clears the policy's target properties.
func (p *Populator) Reset(policy simplecms.AutoFillProperty, entity *simplecms.ContentEntity) {
	for _, alias := range []string{
		policy.WidthFieldAlias,
		policy.HeightFieldAlias,
		policy.LengthFieldAlias,
		policy.ExtensionFieldAlias,
	} {
		set(entity, alias, simplecms.AbsentValue())
	}
}

// ObjectKey resolves a file reference to a storage object key.
func (p *Populator) ObjectKey(reference string) string {
	key := strings.TrimSpace(reference)
	if p.urlPrefix != "" {
		key = strings.TrimPrefix(key, p.urlPrefix)
	}
	return strings.TrimLeft(key, "/")
}

// Extension returns the lower-cased extension of key without the dot.
func Extension(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}

func (p *Populator) objectMeta(ctx context.Context, key string) (*simplecms.ObjectMeta, error) {
	res, err := p.call(ctx, func() (interface{}, error) {
		return p.store.GetObjectMeta(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return res.(*simplecms.ObjectMeta), nil
}

func (p *Populator) imageConfig(ctx context.Context, key string) (image.Config, error) {
	res, err := p.call(ctx, func() (interface{}, error) {
		rc, err := p.store.Download(ctx, key)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		cfg, _, err := image.DecodeConfig(rc)
		if err != nil && !errors.Is(err, image.ErrFormat) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if err != nil {
			// undecodable content is the file's problem, not the store's
			return image.Config{}, image.ErrFormat
		}
		return cfg, nil
	})
	if err != nil {
		return image.Config{}, err
	}
	return res.(image.Config), nil
}

func set(entity *simplecms.ContentEntity, alias string, v simplecms.Value) {
	if alias == "" {
		return
	}
	entity.SetValue(alias, v)
}
