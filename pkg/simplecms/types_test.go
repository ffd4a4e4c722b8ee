package simplecms

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntity() *ContentEntity {
	group := 1
	ct := &ContentType{
		Alias: "page",
		Kind:  KindContent,
		PropertyGroups: []*PropertyGroup{
			{ID: 1, Name: "Second", SortOrder: 2},
			{ID: 2, Name: "First", SortOrder: 1},
		},
		PropertyTypes: []*PropertyType{
			{ID: 10, Alias: "title", PropertyGroupID: &group},
			{ID: 11, Alias: "tags"},
		},
	}
	return &ContentEntity{
		ID:          uuid.New(),
		Kind:        KindContent,
		ContentType: ct,
		Properties: []*Property{
			{ID: 10, PropertyType: ct.PropertyTypes[0], Value: ScalarValue("Hello")},
			{ID: 11, PropertyType: ct.PropertyTypes[1]},
		},
	}
}

func TestContentEntity_PropertyGroupsSorted(t *testing.T) {
	e := testEntity()
	groups := e.PropertyGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "First", groups[0].Name)

	// the content type keeps its stored order
	assert.Equal(t, "Second", e.ContentType.PropertyGroups[0].Name)
	assert.Nil(t, (&ContentEntity{}).PropertyGroups())
}

func TestContentEntity_SetValue(t *testing.T) {
	e := testEntity()
	assert.True(t, e.SetValue("tags", ScalarValue("a,b")))
	assert.False(t, e.SetValue("missing", ScalarValue("x")))

	p, ok := e.Property("tags")
	require.True(t, ok)
	assert.Equal(t, "a,b", p.Value.Scalar())
}

func TestContentEntity_Clone(t *testing.T) {
	e := testEntity()
	c := e.Clone()

	c.SetValue("title", ScalarValue("Changed"))
	*c.ContentType.PropertyTypes[0].PropertyGroupID = 9

	title, _ := e.Property("title")
	assert.Equal(t, "Hello", title.Value.Scalar())
	assert.Equal(t, 1, *e.ContentType.PropertyTypes[0].PropertyGroupID)

	// cloned properties share the cloned schema
	ct, _ := c.Property("title")
	assert.Same(t, c.ContentType.PropertyTypes[0], ct.PropertyType)
	assert.True(t, ct.PropertyType.Grouped())

	var nilEntity *ContentEntity
	assert.Nil(t, nilEntity.Clone())
}
