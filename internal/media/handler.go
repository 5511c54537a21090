// Package media hands out presigned URLs so clients upload post media straight to
// object storage.
package media

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
)

const keyPrefix = "post-media/"

type Signer interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignRead(ctx context.Context, key string) (string, error)
}

type PresignRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

type PresignResponse struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type Handler struct {
	signer Signer
	now    func() time.Time
}

// NewHandler accepts a nil signer; every request then answers 503.
func NewHandler(signer Signer) *Handler {
	return &Handler{signer: signer, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/presign", h.Upload)
	r.Get("/url", h.Read)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req PresignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	name := cleanName(req.FileName)
	if name == "" || req.FileType == "" {
		respond.Error(w, http.StatusBadRequest, "file_name and file_type are required")
		return
	}
	if h.signer == nil {
		respond.Error(w, http.StatusServiceUnavailable, "media uploads are not configured")
		return
	}

	key := ObjectKey(h.now(), uuid.NewString(), name)
	url, err := h.signer.PresignUpload(r.Context(), key, req.FileType)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, PresignResponse{URL: url, Key: key})
}

func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if !strings.HasPrefix(key, keyPrefix) {
		respond.Error(w, http.StatusBadRequest, "invalid key")
		return
	}
	if h.signer == nil {
		respond.Error(w, http.StatusServiceUnavailable, "media uploads are not configured")
		return
	}
	url, err := h.signer.PresignRead(r.Context(), key)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, PresignResponse{URL: url})
}

// ObjectKey builds post-media/<timestamp>-<id>-<name>.
func ObjectKey(t time.Time, id, name string) string {
	return keyPrefix + t.UTC().Format("20060102150405") + "-" + id + "-" + name
}

func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
