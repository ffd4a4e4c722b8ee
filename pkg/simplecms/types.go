package simplecms

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntityKind distinguishes documents from uploaded assets.
type EntityKind string

// Entity kind constants (typed).
const (
	KindContent EntityKind = "content"
	KindMedia   EntityKind = "media"
)

// IsValid reports whether k is a known entity kind.
func (k EntityKind) IsValid() bool {
	return k == KindContent || k == KindMedia
}

// PropertyGroup is a named partition of a content type's property types.
type PropertyGroup struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	SortOrder int    `json:"sort_order" yaml:"sortOrder"`
}

// PropertyType is the schema of a single property.
//
// PropertyGroupID is nil for properties that do not belong to any group.
type PropertyType struct {
	ID                   int    `json:"id" yaml:"id"`
	Alias                string `json:"alias" yaml:"alias"`
	Name                 string `json:"name" yaml:"name"`
	Description          string `json:"description,omitempty" yaml:"description"`
	Mandatory            bool   `json:"mandatory,omitempty" yaml:"mandatory"`
	ValidationRegExp     string `json:"validation_regexp,omitempty" yaml:"validationRegExp"`
	DataTypeDefinitionID int    `json:"data_type_definition_id" yaml:"dataTypeDefinitionId"`
	PropertyGroupID      *int   `json:"property_group_id,omitempty" yaml:"propertyGroupId"`
	SortOrder            int    `json:"sort_order" yaml:"sortOrder"`
}

// Grouped reports whether the property type belongs to a property group.
func (pt *PropertyType) Grouped() bool {
	return pt.PropertyGroupID != nil
}

// ContentType is the schema shared by all entities of one type.
type ContentType struct {
	ID             int              `json:"id" yaml:"id"`
	Alias          string           `json:"alias" yaml:"alias"`
	Name           string           `json:"name" yaml:"name"`
	Kind           EntityKind       `json:"kind" yaml:"kind"`
	PropertyGroups []*PropertyGroup `json:"property_groups,omitempty" yaml:"propertyGroups"`
	PropertyTypes  []*PropertyType  `json:"property_types,omitempty" yaml:"propertyTypes"`
}

// PropertyType returns the property type with the given alias.
func (ct *ContentType) PropertyType(alias string) (*PropertyType, bool) {
	for _, pt := range ct.PropertyTypes {
		if pt.Alias == alias {
			return pt, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the content type.
func (ct *ContentType) Clone() *ContentType {
	if ct == nil {
		return nil
	}
	c := *ct
	if ct.PropertyGroups != nil {
		c.PropertyGroups = make([]*PropertyGroup, len(ct.PropertyGroups))
		for i, g := range ct.PropertyGroups {
			gc := *g
			c.PropertyGroups[i] = &gc
		}
	}
	if ct.PropertyTypes != nil {
		c.PropertyTypes = make([]*PropertyType, len(ct.PropertyTypes))
		for i, pt := range ct.PropertyTypes {
			c.PropertyTypes[i] = pt.clone()
		}
	}
	return &c
}

func (pt *PropertyType) clone() *PropertyType {
	c := *pt
	if pt.PropertyGroupID != nil {
		id := *pt.PropertyGroupID
		c.PropertyGroupID = &id
	}
	return &c
}

// Property is a typed value attached to an entity.
type Property struct {
	ID           int           `json:"id"`
	PropertyType *PropertyType `json:"property_type"`
	Value        Value         `json:"value"`
}

// Alias returns the alias of the property's type.
func (p *Property) Alias() string {
	if p.PropertyType == nil {
		return ""
	}
	return p.PropertyType.Alias
}

// ContentEntity is a content or media item with its schema already loaded.
type ContentEntity struct {
	ID          uuid.UUID    `json:"id"`
	ParentID    uuid.UUID    `json:"parent_id"`
	Name        string       `json:"name"`
	Kind        EntityKind   `json:"kind"`
	ContentType *ContentType `json:"content_type"`
	Properties  []*Property  `json:"properties"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PropertyGroups returns the groups declared on the entity's content type in
// stored sort order. The returned slice is a fresh copy.
func (e *ContentEntity) PropertyGroups() []*PropertyGroup {
	if e.ContentType == nil {
		return nil
	}
	groups := make([]*PropertyGroup, len(e.ContentType.PropertyGroups))
	copy(groups, e.ContentType.PropertyGroups)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].SortOrder < groups[j].SortOrder
	})
	return groups
}

// Property returns the property with the given alias.
func (e *ContentEntity) Property(alias string) (*Property, bool) {
	for _, p := range e.Properties {
		if p.Alias() == alias {
			return p, true
		}
	}
	return nil, false
}

// SetValue replaces the value of the property with the given alias. It
// reports false if the entity has no such property.
func (e *ContentEntity) SetValue(alias string, v Value) bool {
	p, ok := e.Property(alias)
	if !ok {
		return false
	}
	p.Value = v
	return true
}

// Clone returns a deep copy of the entity. Properties keep pointing at the
// cloned content type's property types.
func (e *ContentEntity) Clone() *ContentEntity {
	if e == nil {
		return nil
	}
	c := *e
	c.ContentType = e.ContentType.Clone()
	if e.Properties == nil {
		return &c
	}
	c.Properties = make([]*Property, len(e.Properties))
	for i, p := range e.Properties {
		pc := Property{ID: p.ID, Value: p.Value.Clone()}
		if p.PropertyType != nil {
			if c.ContentType != nil {
				if pt, ok := c.ContentType.PropertyType(p.PropertyType.Alias); ok {
					pc.PropertyType = pt
				}
			}
			if pc.PropertyType == nil {
				pc.PropertyType = p.PropertyType.clone()
			}
		}
		c.Properties[i] = &pc
	}
	return &c
}

// DataTypeDefinition is a configured instance of an editor.
type DataTypeDefinition struct {
	ID           int                    `json:"id" yaml:"id"`
	Name         string                 `json:"name" yaml:"name"`
	EditorAlias  string                 `json:"editor_alias" yaml:"editorAlias"`
	DatabaseType string                 `json:"database_type,omitempty" yaml:"databaseType"`
	PreValues    map[string]interface{} `json:"pre_values,omitempty" yaml:"preValues"`
}

// PreValueField describes one configuration field of an editor.
type PreValueField struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	View string `json:"view"`
}

// EditorDefinition is plugin metadata describing how a property value is
// edited and rendered.
type EditorDefinition struct {
	Alias            string                 `json:"alias"`
	Name             string                 `json:"name"`
	View             string                 `json:"view"`
	ValueType        string                 `json:"value_type,omitempty"`
	HideLabel        bool                   `json:"hide_label"`
	DefaultPreValues map[string]interface{} `json:"default_pre_values,omitempty"`
	PreValueFields   []PreValueField        `json:"pre_value_fields,omitempty"`
}

// User is the subset of a back-office user the projections need.
type User struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
}

// CropPreset is a named image-cropping configuration.
type CropPreset struct {
	Alias  string `json:"alias" yaml:"alias"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// AutoFillProperty maps an upload property alias to the properties that
// receive the metadata derived from the uploaded file. Empty target aliases
// are skipped.
type AutoFillProperty struct {
	Alias               string `json:"alias" yaml:"alias"`
	WidthFieldAlias     string `json:"width_field_alias,omitempty" yaml:"widthFieldAlias"`
	HeightFieldAlias    string `json:"height_field_alias,omitempty" yaml:"heightFieldAlias"`
	LengthFieldAlias    string `json:"length_field_alias,omitempty" yaml:"lengthFieldAlias"`
	ExtensionFieldAlias string `json:"extension_field_alias,omitempty" yaml:"extensionFieldAlias"`
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}
