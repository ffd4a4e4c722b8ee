// Package mapping projects content entities into the models used by the
// editing UI: a tabbed display model, a flat DTO and a basic model.
//
// Projections never mutate the entity they read and keep no state between
// calls, so one Projector may serve concurrent requests.
package mapping

import (
	"log/slog"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// UnknownOwnerName is shown when the creator of an entity cannot be resolved.
const UnknownOwnerName = "unknown"

// Projector implements simplecms.Projector.
type Projector struct {
	dataTypes simplecms.DataTypeResolver
	editors   simplecms.EditorResolver
	users     simplecms.UserResolver
	strict    bool
	logger    *slog.Logger
}

// Option configures a Projector.
type Option func(*Projector)

// WithUsers sets the user lookup used to resolve owners.
func WithUsers(users simplecms.UserResolver) Option {
	return func(p *Projector) {
		p.users = users
	}
}

// Strict makes a schema-resolution failure abort the whole projection
// instead of being reported in DisplayModel.ValidationErrors.
func Strict() Option {
	return func(p *Projector) {
		p.strict = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Projector) {
		p.logger = logger
	}
}

// New creates a Projector resolving data types and editors through the given
// lookups (usually the same *registry.Registry).
func New(dataTypes simplecms.DataTypeResolver, editors simplecms.EditorResolver, opts ...Option) *Projector {
	p := &Projector{
		dataTypes: dataTypes,
		editors:   editors,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ simplecms.Projector = (*Projector)(nil)
