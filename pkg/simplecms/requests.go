package simplecms

import "github.com/google/uuid"

// CreateContentRequest contains parameters for creating a content or media
// entity from a registered content type.
//
// Values is keyed by property alias; aliases not declared on the content type
// are rejected. Missing aliases produce absent values.
type CreateContentRequest struct {
	ContentTypeAlias string
	ParentID         uuid.UUID
	Name             string
	CreatorID        uuid.UUID
	Values           map[string]interface{}
}
