package user

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.Service.Create(r.Context(), &req)
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, u.Public())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := store.DecodeID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, u.Public())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	respond.JSON(w, http.StatusOK, users)
}

// Routes mounts the user endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}
