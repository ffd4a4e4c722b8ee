package imagecropper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Enricher fills file metadata on media whose properties match a configured
// auto-fill policy.
//
// A cropper value is handled by shape:
//   - structured with a string "src": metadata is populated from src
//   - non-empty string: the value is rewritten to {src, crops} using the
//     data type's crop presets, then metadata is populated from the string
//   - absent or empty string: metadata is reset
//
// Anything else is left untouched.
type Enricher struct {
	policies      map[string]simplecms.AutoFillProperty
	presets       simplecms.CropPresetProvider
	populator     simplecms.FileMetadataPopulator
	legacyRewrite bool
	logger        *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLegacyRewrite controls whether bare string values are stored back as
// {src, crops} objects. Enabled by default.
func WithLegacyRewrite(enabled bool) Option {
	return func(e *Enricher) {
		e.legacyRewrite = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// New creates an Enricher. Policies are keyed by property alias; a later
// policy with the same alias replaces an earlier one.
func New(policies []simplecms.AutoFillProperty, presets simplecms.CropPresetProvider, populator simplecms.FileMetadataPopulator, opts ...Option) *Enricher {
	e := &Enricher{
		policies:      make(map[string]simplecms.AutoFillProperty, len(policies)),
		presets:       presets,
		populator:     populator,
		legacyRewrite: true,
		logger:        slog.Default(),
	}
	for _, p := range policies {
		e.policies[p.Alias] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnMediaSaving enriches every entity of a save batch. Errors from all
// entities are joined; the batch is enriched as far as possible regardless.
func (e *Enricher) OnMediaSaving(ctx context.Context, batch []*simplecms.ContentEntity) error {
	var errs []error
	for _, m := range batch {
		if err := e.enrich(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnMediaCreated enriches a newly created entity.
func (e *Enricher) OnMediaCreated(ctx context.Context, media *simplecms.ContentEntity) error {
	return e.enrich(ctx, media)
}

// Hooks returns media hooks running the enricher on save and create.
func (e *Enricher) Hooks() *simplecms.MediaHooks {
	return &simplecms.MediaHooks{
		BeforeMediaSave: []simplecms.BeforeMediaSaveHook{
			func(hctx *simplecms.HookContext, batch []*simplecms.ContentEntity) error {
				return e.OnMediaSaving(hctx.Context, batch)
			},
		},
		AfterMediaCreate: []simplecms.AfterMediaCreateHook{
			func(hctx *simplecms.HookContext, media *simplecms.ContentEntity) error {
				return e.OnMediaCreated(hctx.Context, media)
			},
		},
	}
}

func (e *Enricher) enrich(ctx context.Context, m *simplecms.ContentEntity) error {
	if m == nil || len(e.policies) == 0 {
		return nil
	}

	var errs []error
	for _, prop := range m.Properties {
		policy, ok := e.policies[prop.Alias()]
		if !ok {
			continue
		}
		if err := e.enrichProperty(ctx, policy, prop, m); err != nil {
			errs = append(errs, &simplecms.ContentError{
				ContentID: m.ID,
				Op:        "autofill",
				Err:       &simplecms.PropertyError{Alias: prop.Alias(), Op: "populate", Err: err},
			})
		}
	}
	return errors.Join(errs...)
}

func (e *Enricher) enrichProperty(ctx context.Context, policy simplecms.AutoFillProperty, prop *simplecms.Property, m *simplecms.ContentEntity) error {
	switch prop.Value.Kind() {
	case simplecms.ValueStructured:
		raw, ok := prop.Value.Field("src")
		if !ok {
			return nil
		}
		src, ok := raw.(string)
		if !ok {
			e.logger.Debug("cropper src is not a string", "alias", prop.Alias(), "content_id", m.ID)
			return nil
		}
		return e.populator.Populate(ctx, policy, src, m)

	case simplecms.ValueScalar:
		src, ok := prop.Value.String()
		if !ok {
			e.logger.Debug("cropper value is not a string", "alias", prop.Alias(), "content_id", m.ID)
			return nil
		}
		if src == "" {
			e.populator.Reset(policy, m)
			return nil
		}
		if e.legacyRewrite {
			prop.Value = simplecms.StructuredValue(map[string]interface{}{
				"src":   src,
				"crops": e.crops(ctx, prop),
			})
		}
		return e.populator.Populate(ctx, policy, src, m)

	default:
		e.populator.Reset(policy, m)
		return nil
	}
}

// crops returns the property's crop presets as plain JSON values. Lookup
// failures degrade to an empty list.
func (e *Enricher) crops(ctx context.Context, prop *simplecms.Property) []interface{} {
	out := []interface{}{}
	if e.presets == nil || prop.PropertyType == nil {
		return out
	}

	dataTypeID := prop.PropertyType.DataTypeDefinitionID
	presets, err := e.presets.CropPresets(ctx, dataTypeID)
	if err != nil {
		if errors.Is(err, simplecms.ErrNoCropPresets) {
			e.logger.Debug("no crop presets", "alias", prop.Alias(), "data_type_id", dataTypeID)
		} else {
			e.logger.Warn("crop presets unavailable", "alias", prop.Alias(), "data_type_id", dataTypeID, "err", err)
		}
		return out
	}

	for _, p := range presets {
		out = append(out, map[string]interface{}{
			"alias":  p.Alias,
			"width":  p.Width,
			"height": p.Height,
		})
	}
	return out
}
