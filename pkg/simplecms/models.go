package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// GenericPropertiesTabLabel labels the tab collecting ungrouped properties.
const GenericPropertiesTabLabel = "Generic properties"

// Owner identifies the user that created an entity.
type Owner struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

// BasicProperty is the flat projection of a property.
type BasicProperty struct {
	ID    int    `json:"id"`
	Alias string `json:"alias"`
	Value Value  `json:"value"`
}

// DisplayProperty is a property with its schema and editor resolved.
type DisplayProperty struct {
	BasicProperty
	Label            string              `json:"label"`
	Description      string              `json:"description,omitempty"`
	IsRequired       bool                `json:"is_required"`
	ValidationRegExp string              `json:"validation_regexp,omitempty"`
	View             string              `json:"view,omitempty"`
	HideLabel        bool                `json:"hide_label"`
	DataType         *DataTypeDefinition `json:"data_type,omitempty"`
	Editor           *EditorDefinition   `json:"editor,omitempty"`
}

// Tab is one property group as shown in the editing UI.
type Tab struct {
	ID         int                `json:"id"`
	Label      string             `json:"label"`
	IsActive   bool               `json:"is_active"`
	SortIndex  int                `json:"sort_index"`
	Properties []*DisplayProperty `json:"properties"`
}

// ValidationError is a schema-resolution failure of a single property.
type ValidationError struct {
	Alias   string `json:"alias"`
	Message string `json:"message"`
}

// ItemIdentity holds the identity fields shared by all projections.
type ItemIdentity struct {
	ID               uuid.UUID  `json:"id"`
	ParentID         uuid.UUID  `json:"parent_id"`
	Name             string     `json:"name"`
	Kind             EntityKind `json:"kind"`
	ContentTypeAlias string     `json:"content_type_alias,omitempty"`
	Owner            Owner      `json:"owner"`
	CreateDate       time.Time  `json:"create_date"`
	UpdateDate       time.Time  `json:"update_date"`
}

// BasicModel is the flat, ungrouped projection of an entity.
type BasicModel struct {
	ItemIdentity
	Properties []*BasicProperty `json:"properties"`
}

// ItemDto is the flat projection with editor and data type resolved.
type ItemDto struct {
	ItemIdentity
	Properties []*DisplayProperty `json:"properties"`
}

// DisplayModel is the tabbed projection used by the editing UI.
type DisplayModel struct {
	ItemIdentity
	Tabs             []*Tab            `json:"tabs"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// Properties returns every property across all tabs in tab order.
func (m *DisplayModel) Properties() []*DisplayProperty {
	var props []*DisplayProperty
	for _, t := range m.Tabs {
		props = append(props, t.Properties...)
	}
	return props
}

// Tab returns the first tab with the given label.
func (m *DisplayModel) Tab(label string) (*Tab, bool) {
	for _, t := range m.Tabs {
		if t.Label == label {
			return t, true
		}
	}
	return nil, false
}
