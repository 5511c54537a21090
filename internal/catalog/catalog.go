// Package catalog serves read-only reference data: suggested connections and
// therapy games.
package catalog

import (
	"context"
	"net/http"

	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

const ListLimit = 100

type Connection struct {
	ID        store.ID `bson:"_id" json:"_id"`
	Name      string   `bson:"name" json:"name"`
	Condition string   `bson:"condition" json:"condition"`
	Journey   string   `bson:"journey" json:"journey"`
	Location  string   `bson:"location" json:"location"`
	Status    string   `bson:"status" json:"status"`
}

type Game struct {
	ID          store.ID `bson:"_id" json:"_id"`
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description" json:"description"`
	Category    string   `bson:"category" json:"category"`
	Difficulty  string   `bson:"difficulty" json:"difficulty"`
	ImageURL    string   `bson:"image_url" json:"image_url"`
}

type Repository struct {
	connections store.Collection
	games       store.Collection
}

func NewRepository(g *store.Gateway) *Repository {
	return &Repository{
		connections: g.Collection(store.Connections),
		games:       g.Collection(store.Games),
	}
}

func (r *Repository) ListConnections(ctx context.Context) ([]Connection, error) {
	out := make([]Connection, 0)
	if err := r.connections.Find(ctx, store.All, store.FindOptions{Limit: ListLimit}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) ListGames(ctx context.Context) ([]Game, error) {
	out := make([]Game, 0)
	if err := r.games.Find(ctx, store.All, store.FindOptions{Limit: ListLimit}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListConnections(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.ListGames(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
