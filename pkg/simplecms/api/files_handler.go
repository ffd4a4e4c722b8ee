package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// FilesHandler serves the media files that upload properties reference
type FilesHandler struct {
	store simplecms.BlobStore
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(store simplecms.BlobStore) *FilesHandler {
	return &FilesHandler{store: store}
}

// FileResponse is the response body for an uploaded file
type FileResponse struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// Routes returns the routes for files. Keys may contain slashes.
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Put("/*", h.UploadFile)
	r.Get("/*", h.DownloadFile)
	r.Delete("/*", h.DeleteFile)

	return r
}

// UploadFile stores the request body under the key in the URL
func (h *FilesHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	key, ok := fileKey(w, r)
	if !ok {
		return
	}

	if err := h.store.Upload(r.Context(), key, r.Body); err != nil {
		slog.Error("Failed to upload file", "key", key, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	meta, err := h.store.GetObjectMeta(r.Context(), key)
	if err != nil {
		slog.Error("Failed to stat uploaded file", "key", key, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	slog.Info("File uploaded", "key", key, "size", meta.Size)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, FileResponse{
		Key:         key,
		Size:        meta.Size,
		ContentType: meta.ContentType,
	})
}

// DownloadFile streams a stored file
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	key, ok := fileKey(w, r)
	if !ok {
		return
	}

	meta, err := h.store.GetObjectMeta(r.Context(), key)
	if err != nil {
		slog.Error("Failed to stat file", "key", key, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	rc, err := h.store.Download(r.Context(), key)
	if err != nil {
		slog.Error("Failed to download file", "key", key, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer rc.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream file", "key", key, "error", err)
	}
}

// DeleteFile removes a stored file
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	key, ok := fileKey(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		slog.Error("Failed to delete file", "key", key, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func fileKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.Trim(chi.URLParam(r, "*"), "/")
	if key == "" {
		http.Error(w, "File key is required", http.StatusBadRequest)
		return "", false
	}
	return key, true
}
