package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ContentTypeHandler handles HTTP requests for content types
type ContentTypeHandler struct {
	service simplecms.Service
}

// NewContentTypeHandler creates a new content type handler
func NewContentTypeHandler(service simplecms.Service) *ContentTypeHandler {
	return &ContentTypeHandler{service: service}
}

// Routes returns the routes for content types
func (h *ContentTypeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateContentType)
	r.Get("/{alias}", h.GetContentType)

	return r
}

// CreateContentType registers a new content type
func (h *ContentTypeHandler) CreateContentType(w http.ResponseWriter, r *http.Request) {
	var ct simplecms.ContentType
	if err := json.NewDecoder(r.Body).Decode(&ct); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateContentType(r.Context(), &ct); err != nil {
		slog.Error("Failed to create content type", "alias", ct.Alias, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	slog.Info("Content type created", "alias", ct.Alias, "kind", ct.Kind)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, &ct)
}

// GetContentType returns a content type by alias
func (h *ContentTypeHandler) GetContentType(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	ct, err := h.service.GetContentType(r.Context(), alias)
	if err != nil {
		slog.Error("Failed to get content type", "alias", alias, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	render.JSON(w, r, ct)
}
