package mapping_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/mapping"
	"github.com/tendant/simple-cms/pkg/simplecms/registry"
)

var adminID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func intPtr(i int) *int { return &i }

func newProjector(t *testing.T, opts ...mapping.Option) *mapping.Projector {
	t.Helper()
	reg, err := registry.New(registry.Builtins(), []simplecms.DataTypeDefinition{
		{ID: -88, Name: "Textstring", EditorAlias: registry.TextboxAlias},
		{ID: -89, Name: "Textarea", EditorAlias: registry.TextareaAlias},
		{ID: -90, Name: "Upload", EditorAlias: registry.UploadAlias},
	})
	require.NoError(t, err)

	users := mapping.NewUserDirectory(simplecms.User{ID: adminID, Name: "admin"})
	opts = append([]mapping.Option{mapping.WithUsers(users)}, opts...)
	return mapping.New(reg, reg, opts...)
}

// simpleContentType declares two groups with three properties between them.
func simpleContentType() *simplecms.ContentType {
	return &simplecms.ContentType{
		ID:    1,
		Alias: "simpleContentType",
		Name:  "Simple Content Type",
		Kind:  simplecms.KindContent,
		PropertyGroups: []*simplecms.PropertyGroup{
			{ID: 11, Name: "Meta", SortOrder: 2},
			{ID: 10, Name: "Content", SortOrder: 1},
		},
		PropertyTypes: []*simplecms.PropertyType{
			{ID: 1, Alias: "title", Name: "Title", Description: "Page title", Mandatory: true, DataTypeDefinitionID: -88, PropertyGroupID: intPtr(10), SortOrder: 1},
			{ID: 2, Alias: "bodyText", Name: "Body Text", DataTypeDefinitionID: -89, PropertyGroupID: intPtr(10), SortOrder: 2},
			{ID: 3, Alias: "author", Name: "Author", ValidationRegExp: "^[A-Za-z ]+$", DataTypeDefinitionID: -88, PropertyGroupID: intPtr(11), SortOrder: 1},
		},
	}
}

// imageMediaType has a single group holding the upload and its metadata.
func imageMediaType() *simplecms.ContentType {
	return &simplecms.ContentType{
		ID:    2,
		Alias: "image",
		Name:  "Image",
		Kind:  simplecms.KindMedia,
		PropertyGroups: []*simplecms.PropertyGroup{
			{ID: 20, Name: "Image", SortOrder: 1},
		},
		PropertyTypes: []*simplecms.PropertyType{
			{ID: 10, Alias: "umbracoFile", Name: "Upload image", DataTypeDefinitionID: -90, PropertyGroupID: intPtr(20), SortOrder: 1},
			{ID: 11, Alias: "umbracoWidth", Name: "Width", DataTypeDefinitionID: -88, PropertyGroupID: intPtr(20), SortOrder: 2},
			{ID: 12, Alias: "umbracoHeight", Name: "Height", DataTypeDefinitionID: -88, PropertyGroupID: intPtr(20), SortOrder: 3},
			{ID: 13, Alias: "umbracoBytes", Name: "Size", DataTypeDefinitionID: -88, PropertyGroupID: intPtr(20), SortOrder: 4},
			{ID: 14, Alias: "umbracoExtension", Name: "Type", DataTypeDefinitionID: -88, PropertyGroupID: intPtr(20), SortOrder: 5},
		},
	}
}

func newEntity(ct *simplecms.ContentType, values map[string]interface{}) *simplecms.ContentEntity {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &simplecms.ContentEntity{
		ID:          uuid.New(),
		ParentID:    uuid.New(),
		Name:        "Home",
		Kind:        ct.Kind,
		ContentType: ct,
		CreatorID:   adminID,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}
	for i, pt := range ct.PropertyTypes {
		e.Properties = append(e.Properties, &simplecms.Property{
			ID:           100 + i,
			PropertyType: pt,
			Value:        simplecms.ValueOf(values[pt.Alias]),
		})
	}
	return e
}

func simpleContent() *simplecms.ContentEntity {
	return newEntity(simpleContentType(), map[string]interface{}{
		"title":    "Welcome",
		"bodyText": "This is the home page",
		"author":   "John Doe",
	})
}

func mediaImage() *simplecms.ContentEntity {
	return newEntity(imageMediaType(), map[string]interface{}{
		"umbracoFile":      map[string]interface{}{"src": "/media/1/photo.jpg"},
		"umbracoWidth":     "200",
		"umbracoHeight":    "200",
		"umbracoBytes":     "100",
		"umbracoExtension": "jpg",
	})
}
