package simplecms

import (
	"context"
	"log/slog"
)

// Hook system allows editors to react to the media lifecycle without the
// service knowing about them. Hooks are registered when the service is built
// and run in registration order.

// MediaHooks defines all available media lifecycle hooks
type MediaHooks struct {
	// BeforeMediaSave runs on every save batch before it is persisted
	BeforeMediaSave []BeforeMediaSaveHook

	// AfterMediaCreate runs once on a brand-new entity before its first save
	AfterMediaCreate []AfterMediaCreateHook

	// OnError receives soft failures reported by the hooks above
	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// BeforeMediaSaveHook is called before a batch of media is persisted
type BeforeMediaSaveHook func(hctx *HookContext, batch []*ContentEntity) error

// AfterMediaCreateHook is called after a media entity is first created
type AfterMediaCreateHook func(hctx *HookContext, media *ContentEntity) error

// ErrorHook is called when a hook reports a soft failure
type ErrorHook func(hctx *HookContext, operation string, err error)

// Merge appends the hooks of other to h.
func (h *MediaHooks) Merge(other *MediaHooks) {
	if other == nil {
		return
	}
	h.BeforeMediaSave = append(h.BeforeMediaSave, other.BeforeMediaSave...)
	h.AfterMediaCreate = append(h.AfterMediaCreate, other.AfterMediaCreate...)
	h.OnError = append(h.OnError, other.OnError...)
}

// executeBeforeMediaSave runs all BeforeMediaSave hooks. Every hook runs even
// if an earlier one failed; the first failure is returned.
func (h *MediaHooks) executeBeforeMediaSave(ctx context.Context, batch []*ContentEntity) error {
	if len(h.BeforeMediaSave) == 0 {
		return nil
	}

	var first error
	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeMediaSave {
		if err := hook(hctx, batch); err != nil && first == nil {
			first = err
		}
		if hctx.StopChain {
			break
		}
	}
	return first
}

// executeAfterMediaCreate runs all AfterMediaCreate hooks
func (h *MediaHooks) executeAfterMediaCreate(ctx context.Context, media *ContentEntity) error {
	if len(h.AfterMediaCreate) == 0 {
		return nil
	}

	var first error
	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterMediaCreate {
		if err := hook(hctx, media); err != nil && first == nil {
			first = err
		}
		if hctx.StopChain {
			break
		}
	}
	return first
}

// executeOnError runs all OnError hooks
func (h *MediaHooks) executeOnError(ctx context.Context, operation string, err error) {
	if len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}

// LoggingHooks logs media lifecycle activity
func LoggingHooks(logger *slog.Logger) *MediaHooks {
	return &MediaHooks{
		BeforeMediaSave: []BeforeMediaSaveHook{
			func(hctx *HookContext, batch []*ContentEntity) error {
				for _, m := range batch {
					logger.Debug("saving media", "id", m.ID, "name", m.Name)
				}
				return nil
			},
		},
		AfterMediaCreate: []AfterMediaCreateHook{
			func(hctx *HookContext, media *ContentEntity) error {
				logger.Debug("media created", "id", media.ID, "type", media.ContentType.Alias)
				return nil
			},
		},
		OnError: []ErrorHook{
			func(hctx *HookContext, operation string, err error) {
				logger.Warn("media hook failed", "operation", operation, "err", err)
			},
		},
	}
}
