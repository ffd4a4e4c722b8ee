package simplecms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	projector  Projector
	hooks      MediaHooks
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithProjector sets the projector used by ProjectDisplay and ProjectBasic
func WithProjector(p Projector) Option {
	return func(s *service) {
		s.projector = p
	}
}

// WithMediaHooks registers media lifecycle hooks. It may be given more than
// once; hooks run in registration order.
func WithMediaHooks(hooks *MediaHooks) Option {
	return func(s *service) {
		s.hooks.Merge(hooks)
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.projector == nil {
		return nil, fmt.Errorf("projector is required")
	}

	return s, nil
}

// Content type operations

func (s *service) CreateContentType(ctx context.Context, contentType *ContentType) error {
	if contentType == nil {
		return fmt.Errorf("%w: nil content type", ErrInvalidEntity)
	}
	if contentType.Alias == "" {
		return fmt.Errorf("%w: content type alias is required", ErrInvalidEntity)
	}
	if !contentType.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntity, contentType.Kind)
	}
	for _, g := range contentType.PropertyGroups {
		if g == nil {
			return fmt.Errorf("%w: nil property group", ErrInvalidEntity)
		}
	}
	seen := make(map[string]bool, len(contentType.PropertyTypes))
	for _, pt := range contentType.PropertyTypes {
		if pt == nil {
			return fmt.Errorf("%w: nil property type", ErrInvalidEntity)
		}
		if pt.Alias == "" {
			return fmt.Errorf("%w: property type alias is required", ErrInvalidEntity)
		}
		if seen[pt.Alias] {
			return fmt.Errorf("%w: duplicate property alias %q", ErrInvalidEntity, pt.Alias)
		}
		seen[pt.Alias] = true
	}
	return s.repository.CreateContentType(ctx, contentType)
}

func (s *service) GetContentType(ctx context.Context, alias string) (*ContentType, error) {
	return s.repository.GetContentType(ctx, alias)
}

// Entity operations

func (s *service) newEntity(ctx context.Context, req CreateContentRequest, kind EntityKind) (*ContentEntity, error) {
	ct, err := s.repository.GetContentType(ctx, req.ContentTypeAlias)
	if err != nil {
		return nil, err
	}
	if ct.Kind != kind {
		return nil, fmt.Errorf("%w: content type %q is %s, not %s", ErrInvalidEntity, ct.Alias, ct.Kind, kind)
	}
	for alias := range req.Values {
		if _, ok := ct.PropertyType(alias); !ok {
			return nil, &PropertyError{Alias: alias, Op: "create", Err: ErrInvalidEntity}
		}
	}

	now := time.Now().UTC()
	entity := &ContentEntity{
		ID:          uuid.New(),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Kind:        kind,
		ContentType: ct,
		CreatorID:   req.CreatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, pt := range ct.PropertyTypes {
		entity.Properties = append(entity.Properties, &Property{
			ID:           pt.ID,
			PropertyType: pt,
			Value:        ValueOf(req.Values[pt.Alias]),
		})
	}
	return entity, nil
}

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*ContentEntity, error) {
	entity, err := s.newEntity(ctx, req, KindContent)
	if err != nil {
		return nil, err
	}

	if err := s.repository.CreateContent(ctx, entity); err != nil {
		return nil, &ContentError{
			ContentID: entity.ID,
			Op:        "create",
			Err:       err,
		}
	}
	return entity, nil
}

// SaveContent persists a content entity. Media entities take the SaveMedia
// path so the BeforeMediaSave hooks see them.
func (s *service) SaveContent(ctx context.Context, entity *ContentEntity) error {
	if entity == nil {
		return &ContentError{Op: "save", Err: ErrInvalidEntity}
	}
	if entity.Kind == KindMedia {
		return s.SaveMedia(ctx, entity)
	}
	return s.persist(ctx, entity)
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*ContentEntity, error) {
	return s.repository.GetContent(ctx, id)
}

func (s *service) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ContentEntity, error) {
	return s.repository.ListChildren(ctx, parentID)
}

// Media operations

func (s *service) CreateMedia(ctx context.Context, req CreateContentRequest) (*ContentEntity, error) {
	media, err := s.newEntity(ctx, req, KindMedia)
	if err != nil {
		return nil, err
	}

	if err := s.hooks.executeAfterMediaCreate(ctx, media); err != nil {
		s.softFailure(ctx, "media_created", media.ID, err)
	}

	if err := s.repository.CreateContent(ctx, media); err != nil {
		return nil, &ContentError{
			ContentID: media.ID,
			Op:        "create_media",
			Err:       err,
		}
	}
	return media, nil
}

func (s *service) SaveMedia(ctx context.Context, media ...*ContentEntity) error {
	for _, m := range media {
		if m == nil {
			return &ContentError{Op: "save_media", Err: ErrInvalidEntity}
		}
		if m.Kind != KindMedia {
			return &ContentError{ContentID: m.ID, Op: "save_media", Err: ErrInvalidEntity}
		}
		if m.ContentType == nil {
			return &ContentError{ContentID: m.ID, Op: "save_media", Err: ErrInvalidEntity}
		}
	}

	// Enrichment failures never block the save.
	if err := s.hooks.executeBeforeMediaSave(ctx, media); err != nil {
		s.softFailure(ctx, "media_saving", uuid.Nil, err)
	}

	for _, m := range media {
		if err := s.persist(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) persist(ctx context.Context, entity *ContentEntity) error {
	entity.UpdatedAt = time.Now().UTC()
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
		entity.CreatedAt = entity.UpdatedAt
		return s.wrap(entity.ID, "create", s.repository.CreateContent(ctx, entity))
	}

	err := s.repository.UpdateContent(ctx, entity)
	if errors.Is(err, ErrContentNotFound) {
		if entity.CreatedAt.IsZero() {
			entity.CreatedAt = entity.UpdatedAt
		}
		return s.wrap(entity.ID, "create", s.repository.CreateContent(ctx, entity))
	}
	return s.wrap(entity.ID, "update", err)
}

func (s *service) wrap(id uuid.UUID, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ContentError{ContentID: id, Op: op, Err: err}
}

func (s *service) softFailure(ctx context.Context, op string, id uuid.UUID, err error) {
	s.logger.Warn("media enrichment incomplete", "operation", op, "content_id", id, "err", err)
	s.hooks.executeOnError(ctx, op, err)
}

// Projections

func (s *service) ProjectDisplay(ctx context.Context, id uuid.UUID) (*DisplayModel, error) {
	entity, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.ProjectDisplay(entity)
}

func (s *service) ProjectBasic(ctx context.Context, id uuid.UUID) (*BasicModel, error) {
	entity, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.projector.ProjectBasic(entity), nil
}
