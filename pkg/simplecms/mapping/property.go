package mapping

import (
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ProjectBasicProperty copies alias, id and value. It performs no lookups and
// cannot fail.
func ProjectBasicProperty(prop *simplecms.Property) *simplecms.BasicProperty {
	return &simplecms.BasicProperty{
		ID:    prop.ID,
		Alias: prop.Alias(),
		Value: prop.Value.Clone(),
	}
}

// ProjectProperty resolves the property's data type and editor and builds
// its display record. Resolution failures are returned as
// *simplecms.PropertyError wrapping ErrDataTypeNotFound or ErrEditorNotFound.
func (p *Projector) ProjectProperty(prop *simplecms.Property) (*simplecms.DisplayProperty, error) {
	dp := p.partialProperty(prop)

	pt := prop.PropertyType
	if pt == nil {
		return dp, &simplecms.PropertyError{Alias: prop.Alias(), Op: "project", Err: simplecms.ErrInvalidEntity}
	}

	dataType, ok := p.dataTypes.DataType(pt.DataTypeDefinitionID)
	if !ok {
		return dp, &simplecms.PropertyError{
			Alias: pt.Alias,
			Op:    "resolve_data_type",
			Err:   fmt.Errorf("%w: %d", simplecms.ErrDataTypeNotFound, pt.DataTypeDefinitionID),
		}
	}
	dp.DataType = dataType

	editor, ok := p.editors.Editor(dataType.EditorAlias)
	if !ok {
		return dp, &simplecms.PropertyError{
			Alias: pt.Alias,
			Op:    "resolve_editor",
			Err:   fmt.Errorf("%w: %q", simplecms.ErrEditorNotFound, dataType.EditorAlias),
		}
	}
	dp.Editor = editor
	dp.View = editor.View
	dp.HideLabel = editor.HideLabel

	return dp, nil
}

// partialProperty fills everything that does not need a lookup, so a
// property that fails to resolve can still be shown.
func (p *Projector) partialProperty(prop *simplecms.Property) *simplecms.DisplayProperty {
	dp := &simplecms.DisplayProperty{BasicProperty: *ProjectBasicProperty(prop)}
	if pt := prop.PropertyType; pt != nil {
		dp.Label = pt.Name
		dp.Description = pt.Description
		dp.IsRequired = pt.Mandatory
		dp.ValidationRegExp = pt.ValidationRegExp
	}
	return dp
}
