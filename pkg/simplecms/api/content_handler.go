package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Projector builds the flat projections served next to the display model.
type Projector interface {
	ProjectBasic(entity *simplecms.ContentEntity) *simplecms.BasicModel
	ProjectDto(entity *simplecms.ContentEntity) (*simplecms.ItemDto, error)
}

// ContentHandler handles HTTP requests for content and media entities
type ContentHandler struct {
	service   simplecms.Service
	projector Projector
	kind      simplecms.EntityKind
}

// NewContentHandler creates a handler for content entities
func NewContentHandler(service simplecms.Service, projector Projector) *ContentHandler {
	return &ContentHandler{
		service:   service,
		projector: projector,
		kind:      simplecms.KindContent,
	}
}

// NewMediaHandler creates a handler for media entities. Creates and saves go
// through the media lifecycle, so registered media hooks run.
func NewMediaHandler(service simplecms.Service, projector Projector) *ContentHandler {
	return &ContentHandler{
		service:   service,
		projector: projector,
		kind:      simplecms.KindMedia,
	}
}

// Routes returns the routes for content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateContent)
	r.Get("/{id}", h.GetBasic)
	r.Put("/{id}", h.UpdateContent)

	r.Get("/{id}/display", h.GetDisplay)
	r.Get("/{id}/dto", h.GetDto)
	r.Get("/{id}/children", h.ListChildren)

	return r
}

// CreateContentRequest is the request body for creating a content or media item
type CreateContentRequest struct {
	ContentTypeAlias string                 `json:"content_type_alias"`
	ParentID         string                 `json:"parent_id,omitempty"`
	Name             string                 `json:"name"`
	CreatorID        string                 `json:"creator_id"`
	Values           map[string]interface{} `json:"values,omitempty"`
}

// UpdateContentRequest is the request body for updating property values
type UpdateContentRequest struct {
	Name   string                 `json:"name,omitempty"`
	Values map[string]interface{} `json:"values"`
}

// CreateContent creates a new content or media item
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		slog.Error("Invalid creator ID", "creator_id", req.CreatorID, "error", err)
		http.Error(w, "Invalid creator ID", http.StatusBadRequest)
		return
	}

	var parentID uuid.UUID
	if req.ParentID != "" {
		parentID, err = uuid.Parse(req.ParentID)
		if err != nil {
			slog.Error("Invalid parent ID", "parent_id", req.ParentID, "error", err)
			http.Error(w, "Invalid parent ID", http.StatusBadRequest)
			return
		}
	}

	createReq := simplecms.CreateContentRequest{
		ContentTypeAlias: req.ContentTypeAlias,
		ParentID:         parentID,
		Name:             req.Name,
		CreatorID:        creatorID,
		Values:           req.Values,
	}

	var entity *simplecms.ContentEntity
	if h.kind == simplecms.KindMedia {
		entity, err = h.service.CreateMedia(r.Context(), createReq)
	} else {
		entity, err = h.service.CreateContent(r.Context(), createReq)
	}
	if err != nil {
		slog.Error("Failed to create content", "kind", h.kind, "content_type", req.ContentTypeAlias, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	slog.Info("Content created", "content_id", entity.ID.String(), "kind", h.kind)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.projector.ProjectBasic(entity))
}

// GetBasic returns the flat projection of an item
func (h *ContentHandler) GetBasic(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.load(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.projector.ProjectBasic(entity))
}

// GetDisplay returns the tabbed projection used by the editing UI
func (h *ContentHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	display, err := h.service.ProjectDisplay(r.Context(), id)
	if err != nil {
		slog.Error("Failed to project content", "content_id", id, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	render.JSON(w, r, display)
}

// GetDto returns the flat projection with editors resolved
func (h *ContentHandler) GetDto(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.load(w, r)
	if !ok {
		return
	}

	dto, err := h.projector.ProjectDto(entity)
	if err != nil {
		slog.Error("Failed to project content", "content_id", entity.ID, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	render.JSON(w, r, dto)
}

// ListChildren returns the flat projections of an item's children
func (h *ContentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	children, err := h.service.ListChildren(r.Context(), id)
	if err != nil {
		slog.Error("Failed to list children", "content_id", id, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	resp := make([]*simplecms.BasicModel, 0, len(children))
	for _, child := range children {
		if child.Kind != h.kind {
			continue
		}
		resp = append(resp, h.projector.ProjectBasic(child))
	}
	render.JSON(w, r, resp)
}

// UpdateContent sets property values on an item and saves it
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entity, ok := h.load(w, r)
	if !ok {
		return
	}

	for alias, v := range req.Values {
		if !entity.SetValue(alias, simplecms.ValueOf(v)) {
			slog.Error("Unknown property", "content_id", entity.ID, "alias", alias)
			http.Error(w, "Unknown property: "+alias, http.StatusBadRequest)
			return
		}
	}
	if req.Name != "" {
		entity.Name = req.Name
	}

	var err error
	if h.kind == simplecms.KindMedia {
		err = h.service.SaveMedia(r.Context(), entity)
	} else {
		err = h.service.SaveContent(r.Context(), entity)
	}
	if err != nil {
		slog.Error("Failed to save content", "content_id", entity.ID, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	render.JSON(w, r, h.projector.ProjectBasic(entity))
}

// load fetches the item named by the id URL parameter and checks its kind.
func (h *ContentHandler) load(w http.ResponseWriter, r *http.Request) (*simplecms.ContentEntity, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}

	entity, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get content", "content_id", id, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	if entity.Kind != h.kind {
		http.Error(w, simplecms.ErrContentNotFound.Error(), http.StatusNotFound)
		return nil, false
	}
	return entity, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid content ID", "content_id", idStr, "error", err)
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, simplecms.ErrContentNotFound),
		errors.Is(err, simplecms.ErrContentTypeNotFound),
		errors.Is(err, simplecms.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplecms.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, simplecms.ErrInvalidEntity):
		return http.StatusBadRequest
	case errors.Is(err, simplecms.ErrDataTypeNotFound),
		errors.Is(err, simplecms.ErrEditorNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
