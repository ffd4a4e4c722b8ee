package simplecms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository defines the interface for content type and entity persistence.
// Entities returned by a Repository carry their content type fully loaded.
type Repository interface {
	// Content type operations
	CreateContentType(ctx context.Context, contentType *ContentType) error
	GetContentType(ctx context.Context, alias string) (*ContentType, error)

	// Entity operations
	CreateContent(ctx context.Context, entity *ContentEntity) error
	GetContent(ctx context.Context, id uuid.UUID) (*ContentEntity, error)
	UpdateContent(ctx context.Context, entity *ContentEntity) error
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ContentEntity, error)
}

// BlobStore defines the interface for storage backends holding uploaded files
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// DataTypeResolver looks up data type definitions by id.
type DataTypeResolver interface {
	DataType(id int) (*DataTypeDefinition, bool)
}

// EditorResolver looks up editor definitions by alias.
type EditorResolver interface {
	Editor(alias string) (*EditorDefinition, bool)
}

// UserResolver looks up back-office users.
type UserResolver interface {
	User(id uuid.UUID) (*User, bool)
}

// CropPresetProvider returns the crop presets configured on a data type.
type CropPresetProvider interface {
	CropPresets(ctx context.Context, dataTypeID int) ([]CropPreset, error)
}

// FileMetadataPopulator derives file metadata onto an entity.
type FileMetadataPopulator interface {
	// Populate sets the policy's target properties from the referenced file.
	Populate(ctx context.Context, policy AutoFillProperty, reference string, entity *ContentEntity) error

	// Reset clears the policy's target properties.
	Reset(policy AutoFillProperty, entity *ContentEntity)
}

// Projector builds UI-facing models from entities.
type Projector interface {
	ProjectDisplay(entity *ContentEntity) (*DisplayModel, error)
	ProjectBasic(entity *ContentEntity) *BasicModel
}
