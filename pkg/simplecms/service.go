package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-cms library
type Service interface {
	// Content type operations
	CreateContentType(ctx context.Context, contentType *ContentType) error
	GetContentType(ctx context.Context, alias string) (*ContentType, error)

	// Entity operations
	CreateContent(ctx context.Context, req CreateContentRequest) (*ContentEntity, error)
	SaveContent(ctx context.Context, entity *ContentEntity) error
	GetContent(ctx context.Context, id uuid.UUID) (*ContentEntity, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ContentEntity, error)

	// Media operations run the registered media hooks
	CreateMedia(ctx context.Context, req CreateContentRequest) (*ContentEntity, error)
	SaveMedia(ctx context.Context, media ...*ContentEntity) error

	// Projections
	ProjectDisplay(ctx context.Context, id uuid.UUID) (*DisplayModel, error)
	ProjectBasic(ctx context.Context, id uuid.UUID) (*BasicModel, error)
}
