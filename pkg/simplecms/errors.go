package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content or media entity was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrContentTypeNotFound indicates a content type was not found
	ErrContentTypeNotFound = errors.New("content type not found")

	// ErrDataTypeNotFound indicates a property references an unknown data type
	ErrDataTypeNotFound = errors.New("missing data type")

	// ErrEditorNotFound indicates a data type references an unregistered editor
	ErrEditorNotFound = errors.New("editor not found")

	// ErrNoCropPresets indicates a data type carries no crop configuration
	ErrNoCropPresets = errors.New("no crop presets configured")

	// ErrObjectNotFound indicates a file was not found in blob storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidEntity indicates an entity is missing required schema
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrAlreadyExists indicates a content type alias or entity id is taken
	ErrAlreadyExists = errors.New("already exists")
)

// PropertyError reports a failure tied to one property alias.
type PropertyError struct {
	Alias string
	Op    string
	Err   error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property operation %s failed for property %q: %v", e.Op, e.Alias, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}
