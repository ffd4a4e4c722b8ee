// Package imagecropper provides the image cropper editor and the media hooks
// that keep auto-fill metadata (width, height, size, extension) in sync with
// the uploaded file referenced by a cropper property.
package imagecropper

import "github.com/tendant/simple-cms/pkg/simplecms"

// EditorAlias is the alias the image cropper editor registers under.
const EditorAlias = "simplecms.imagecropper"

// CropsPreValueKey is the data type pre-value holding crop presets.
const CropsPreValueKey = "crops"

// Definition returns the editor metadata for the image cropper.
func Definition() simplecms.EditorDefinition {
	return simplecms.EditorDefinition{
		Alias:     EditorAlias,
		Name:      "Image Cropper",
		View:      "imagecropper",
		ValueType: "JSON",
		HideLabel: false,
		DefaultPreValues: map[string]interface{}{
			"focalPoint": map[string]interface{}{"left": 0.5, "top": 0.5},
			"src":        "",
		},
		PreValueFields: []simplecms.PreValueField{
			{Key: CropsPreValueKey, Name: "Crop sizes", View: "cropsizes"},
		},
	}
}
