// Package registry resolves editor and data type definitions by key.
//
// A Registry is built once at startup from declared plugin metadata and is
// read-only afterwards, so it is safe for concurrent use. Lookups report
// absence with a boolean instead of falling back to a default definition.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/imagecropper"
)

// Core editor aliases.
const (
	TextboxAlias  = "simplecms.textbox"
	TextareaAlias = "simplecms.textarea"
	UploadAlias   = "simplecms.upload"
)

// CropsPreValueKey is the data type pre-value holding crop presets.
const CropsPreValueKey = imagecropper.CropsPreValueKey

// Registry maps editor aliases and data type ids to their definitions.
type Registry struct {
	editors   map[string]*simplecms.EditorDefinition
	dataTypes map[int]*simplecms.DataTypeDefinition
}

// New builds a registry. Duplicate editor aliases or data type ids are
// rejected, as are data types referencing an editor that is not declared.
func New(editors []simplecms.EditorDefinition, dataTypes []simplecms.DataTypeDefinition) (*Registry, error) {
	r := &Registry{
		editors:   make(map[string]*simplecms.EditorDefinition, len(editors)),
		dataTypes: make(map[int]*simplecms.DataTypeDefinition, len(dataTypes)),
	}

	for i := range editors {
		e := editors[i]
		if e.Alias == "" {
			return nil, fmt.Errorf("editor %q has no alias", e.Name)
		}
		if _, exists := r.editors[e.Alias]; exists {
			return nil, fmt.Errorf("duplicate editor alias %q", e.Alias)
		}
		r.editors[e.Alias] = &e
	}

	for i := range dataTypes {
		dt := dataTypes[i]
		if _, exists := r.dataTypes[dt.ID]; exists {
			return nil, fmt.Errorf("duplicate data type id %d", dt.ID)
		}
		if _, ok := r.editors[dt.EditorAlias]; !ok {
			return nil, fmt.Errorf("data type %d (%s): %w: %q", dt.ID, dt.Name, simplecms.ErrEditorNotFound, dt.EditorAlias)
		}
		r.dataTypes[dt.ID] = &dt
	}

	return r, nil
}

// Editor returns the editor registered under alias.
func (r *Registry) Editor(alias string) (*simplecms.EditorDefinition, bool) {
	e, ok := r.editors[alias]
	return e, ok
}

// DataType returns the data type with the given id.
func (r *Registry) DataType(id int) (*simplecms.DataTypeDefinition, bool) {
	dt, ok := r.dataTypes[id]
	return dt, ok
}

// CropPresets decodes the crops pre-value of a data type. The pre-value may
// be stored as a JSON string or as a decoded list.
func (r *Registry) CropPresets(ctx context.Context, dataTypeID int) ([]simplecms.CropPreset, error) {
	dt, ok := r.dataTypes[dataTypeID]
	if !ok {
		return nil, fmt.Errorf("data type %d: %w", dataTypeID, simplecms.ErrDataTypeNotFound)
	}

	raw, ok := dt.PreValues[CropsPreValueKey]
	if !ok || raw == nil {
		return nil, simplecms.ErrNoCropPresets
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, simplecms.ErrNoCropPresets
		}
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("data type %d: encode crops: %w", dataTypeID, err)
		}
		data = b
	}

	var presets []simplecms.CropPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("data type %d: decode crops: %w", dataTypeID, err)
	}
	if len(presets) == 0 {
		return nil, simplecms.ErrNoCropPresets
	}
	return presets, nil
}

// Builtins returns the core editors every installation registers.
func Builtins() []simplecms.EditorDefinition {
	return []simplecms.EditorDefinition{
		{
			Alias:     TextboxAlias,
			Name:      "Textbox",
			View:      "textbox",
			ValueType: "STRING",
		},
		{
			Alias:     TextareaAlias,
			Name:      "Textarea",
			View:      "textarea",
			ValueType: "TEXT",
		},
		{
			Alias:     UploadAlias,
			Name:      "Upload",
			View:      "fileupload",
			ValueType: "STRING",
		},
		imagecropper.Definition(),
	}
}
