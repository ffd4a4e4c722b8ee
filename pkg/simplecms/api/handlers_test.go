package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

const adminID = "00000000-0000-0000-0000-000000000001"

// setupRouter wires the handlers over in-memory components built from the
// shared settings fixture.
func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	cfg, err := config.Load(config.WithSettingsFile("../config/testdata/settings.yaml"))
	require.NoError(t, err)
	components, err := cfg.Build(t.Context())
	require.NoError(t, err)

	r := chi.NewRouter()
	api.Mount(r, components.Service, components.Projector, components.Store)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func propertyValue(props []*simplecms.BasicProperty, alias string) interface{} {
	for _, p := range props {
		if p.Alias == alias {
			return p.Value.Interface()
		}
	}
	return nil
}

func createPage(t *testing.T, h http.Handler, req api.CreateContentRequest) simplecms.BasicModel {
	t.Helper()
	w := do(t, h, http.MethodPost, "/content", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp simplecms.BasicModel
	decode(t, w, &resp)
	return resp
}

func TestContentHandler_CreateAndProject(t *testing.T) {
	router := setupRouter(t)

	created := createPage(t, router, api.CreateContentRequest{
		ContentTypeAlias: "textPage",
		Name:             "Home",
		CreatorID:        adminID,
		Values:           map[string]interface{}{"title": "Hello"},
	})
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, simplecms.KindContent, created.Kind)
	assert.Equal(t, "admin", created.Owner.Name)
	require.Len(t, created.Properties, 3)
	assert.Equal(t, "Hello", propertyValue(created.Properties, "title"))
	assert.Nil(t, propertyValue(created.Properties, "bodyText"))

	t.Run("basic", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/content/"+created.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var resp simplecms.BasicModel
		decode(t, w, &resp)
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, "Home", resp.Name)
	})

	t.Run("display", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/content/"+created.ID.String()+"/display", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var display simplecms.DisplayModel
		decode(t, w, &display)
		require.Len(t, display.Tabs, 2)
		assert.Equal(t, "Content", display.Tabs[0].Label)
		assert.True(t, display.Tabs[0].IsActive)
		assert.False(t, display.Tabs[1].IsActive)

		generic, ok := display.Tab(simplecms.GenericPropertiesTabLabel)
		require.True(t, ok)
		require.Len(t, generic.Properties, 1)
		assert.Equal(t, "keywords", generic.Properties[0].Alias)
		assert.Empty(t, display.ValidationErrors)
	})

	t.Run("dto", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/content/"+created.ID.String()+"/dto", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var dto simplecms.ItemDto
		decode(t, w, &dto)
		require.Len(t, dto.Properties, 3)
		for _, p := range dto.Properties {
			assert.NotNil(t, p.Editor, p.Alias)
		}
	})
}

func TestContentHandler_CreateErrors(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"malformed body", []byte("{"), http.StatusBadRequest},
		{"invalid creator", api.CreateContentRequest{ContentTypeAlias: "textPage", CreatorID: "nope"}, http.StatusBadRequest},
		{"invalid parent", api.CreateContentRequest{ContentTypeAlias: "textPage", CreatorID: adminID, ParentID: "nope"}, http.StatusBadRequest},
		{"unknown content type", api.CreateContentRequest{ContentTypeAlias: "missing", CreatorID: adminID}, http.StatusNotFound},
		{"media type on content route", api.CreateContentRequest{ContentTypeAlias: "image", CreatorID: adminID}, http.StatusBadRequest},
		{"undeclared property", api.CreateContentRequest{
			ContentTypeAlias: "textPage",
			CreatorID:        adminID,
			Values:           map[string]interface{}{"subtitle": "x"},
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/content", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestContentHandler_GetErrors(t *testing.T) {
	router := setupRouter(t)
	page := createPage(t, router, api.CreateContentRequest{ContentTypeAlias: "textPage", CreatorID: adminID})

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/content/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/content/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/content/"+uuid.NewString()+"/display", nil).Code)

	// content is not served from the media routes
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/media/"+page.ID.String(), nil).Code)
}

func TestContentHandler_UpdateContent(t *testing.T) {
	router := setupRouter(t)
	page := createPage(t, router, api.CreateContentRequest{ContentTypeAlias: "textPage", Name: "Draft", CreatorID: adminID})

	w := do(t, router, http.MethodPut, "/content/"+page.ID.String(), api.UpdateContentRequest{
		Name:   "Final",
		Values: map[string]interface{}{"bodyText": "<p>done</p>"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/content/"+page.ID.String(), nil)
	var resp simplecms.BasicModel
	decode(t, w, &resp)
	assert.Equal(t, "Final", resp.Name)
	assert.Equal(t, "<p>done</p>", propertyValue(resp.Properties, "bodyText"))

	w = do(t, router, http.MethodPut, "/content/"+page.ID.String(), api.UpdateContentRequest{
		Values: map[string]interface{}{"subtitle": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentHandler_ListChildren(t *testing.T) {
	router := setupRouter(t)
	parent := createPage(t, router, api.CreateContentRequest{ContentTypeAlias: "textPage", Name: "Root", CreatorID: adminID})
	for _, name := range []string{"About", "Contact"} {
		createPage(t, router, api.CreateContentRequest{
			ContentTypeAlias: "textPage",
			Name:             name,
			ParentID:         parent.ID.String(),
			CreatorID:        adminID,
		})
	}

	w := do(t, router, http.MethodGet, "/content/"+parent.ID.String()+"/children", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var children []simplecms.BasicModel
	decode(t, w, &children)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, parent.ID, c.ParentID)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestMediaHandler_EnrichesOnCreateAndSave(t *testing.T) {
	router := setupRouter(t)

	w := do(t, router, http.MethodPut, "/files/1001/cat.png", pngBytes(t, 64, 48))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/media", api.CreateContentRequest{
		ContentTypeAlias: "image",
		Name:             "cat",
		CreatorID:        adminID,
		Values:           map[string]interface{}{"umbracoFile": "/media/1001/cat.png"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var media simplecms.BasicModel
	decode(t, w, &media)
	assert.Equal(t, simplecms.KindMedia, media.Kind)
	file, ok := propertyValue(media.Properties, "umbracoFile").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/media/1001/cat.png", file["src"])
	assert.Equal(t, float64(64), propertyValue(media.Properties, "umbracoWidth"))
	assert.Equal(t, float64(48), propertyValue(media.Properties, "umbracoHeight"))
	assert.Equal(t, "png", propertyValue(media.Properties, "umbracoExtension"))

	// clearing the upload resets the derived metadata
	w = do(t, router, http.MethodPut, "/media/"+media.ID.String(), api.UpdateContentRequest{
		Values: map[string]interface{}{"umbracoFile": ""},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/media/"+media.ID.String(), nil)
	var saved simplecms.BasicModel
	decode(t, w, &saved)
	assert.Nil(t, propertyValue(saved.Properties, "umbracoWidth"))
	assert.Nil(t, propertyValue(saved.Properties, "umbracoExtension"))

	w = do(t, router, http.MethodGet, "/media/"+media.ID.String()+"/display", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var display simplecms.DisplayModel
	decode(t, w, &display)
	assert.Len(t, display.Properties(), 5)
}

func TestMediaHandler_MissingFileStillSaves(t *testing.T) {
	router := setupRouter(t)

	w := do(t, router, http.MethodPost, "/media", api.CreateContentRequest{
		ContentTypeAlias: "image",
		Name:             "ghost",
		CreatorID:        adminID,
		Values:           map[string]interface{}{"umbracoFile": "/media/404/ghost.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var media simplecms.BasicModel
	decode(t, w, &media)
	assert.Nil(t, propertyValue(media.Properties, "umbracoWidth"))
	assert.Nil(t, propertyValue(media.Properties, "umbracoBytes"))
}

func TestContentTypeHandler(t *testing.T) {
	router := setupRouter(t)

	news := simplecms.ContentType{
		ID:    2000,
		Alias: "news",
		Name:  "News",
		Kind:  simplecms.KindContent,
		PropertyTypes: []*simplecms.PropertyType{
			{ID: 1, Alias: "headline", Name: "Headline", DataTypeDefinitionID: -88},
		},
	}
	w := do(t, router, http.MethodPost, "/content-types", news)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/content-types/news", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got simplecms.ContentType
	decode(t, w, &got)
	assert.Equal(t, "News", got.Name)
	require.Len(t, got.PropertyTypes, 1)
	assert.False(t, got.PropertyTypes[0].Grouped())

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/content-types/missing", nil).Code)

	bogus := news
	bogus.Alias = "bogus"
	bogus.Kind = "folder"
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/content-types", bogus).Code)

	w = do(t, router, http.MethodPost, "/content-types", news)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/content-types", []byte(`{"alias":"broken","kind":"content","property_types":[null]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	page := createPage(t, router, api.CreateContentRequest{
		ContentTypeAlias: "news",
		CreatorID:        adminID,
		Values:           map[string]interface{}{"headline": "Launch"},
	})
	assert.Equal(t, "Launch", propertyValue(page.Properties, "headline"))
}

func TestFilesHandler(t *testing.T) {
	router := setupRouter(t)
	data := pngBytes(t, 2, 2)

	w := do(t, router, http.MethodPut, "/files/a/b/dot.png", data)
	require.Equal(t, http.StatusCreated, w.Code)
	var file api.FileResponse
	decode(t, w, &file)
	assert.Equal(t, "a/b/dot.png", file.Key)
	assert.Equal(t, int64(len(data)), file.Size)

	w = do(t, router, http.MethodGet, "/files/a/b/dot.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, data, w.Body.Bytes())

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/files/a/b/dot.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/files/a/b/dot.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/files/a/b/dot.png", nil).Code)
}
