package post

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// Routes mounts the post endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/like", h.Like)
	r.Post("/{id}/comment", h.Comment)
	r.Get("/{id}/comments", h.ListComments)
	r.Post("/{id}/share", h.Share)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id, req, ok := actionRequest(w, r)
	if !ok {
		return
	}
	if err := h.Service.Like(r.Context(), id, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	respond.OK(w, http.StatusOK)
}

func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	id, req, ok := actionRequest(w, r)
	if !ok {
		return
	}
	if err := h.Service.Comment(r.Context(), id, req.UserID, req.Text); err != nil {
		writeError(w, err)
		return
	}
	respond.OK(w, http.StatusCreated)
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id, req, ok := actionRequest(w, r)
	if !ok {
		return
	}
	if err := h.Service.Share(r.Context(), id, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	respond.OK(w, http.StatusOK)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	comments, err := h.Service.Comments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, comments)
}

func postID(w http.ResponseWriter, r *http.Request) (store.ID, bool) {
	id, ok := store.DecodeID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid post id")
	}
	return id, ok
}

func actionRequest(w http.ResponseWriter, r *http.Request) (store.ID, ActionRequest, bool) {
	var req ActionRequest
	id, ok := postID(w, r)
	if !ok {
		return id, req, false
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return id, req, false
	}
	return id, req, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "post not found")
	default:
		respond.Error(w, http.StatusInternalServerError, err.Error())
	}
}
