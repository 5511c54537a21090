package user

import (
	"context"
	"fmt"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type Repository struct {
	users store.Collection
}

func NewRepository(g *store.Gateway) *Repository {
	return &Repository{users: g.Collection(store.Users)}
}

func (r *Repository) CreateUser(ctx context.Context, u *User) (*User, error) {
	id, err := r.users.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

// GetUserByID returns store.ErrNotFound when no user has the id.
func (r *Repository) GetUserByID(ctx context.Context, id store.ID) (*User, error) {
	u := &User{}
	if err := r.users.FindOne(ctx, store.ByID(id), u); err != nil {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), err)
	}
	return u, nil
}

func (r *Repository) ListUsers(ctx context.Context, limit int64) ([]User, error) {
	users := make([]User, 0)
	if err := r.users.Find(ctx, store.All, store.FindOptions{Limit: limit}, &users); err != nil {
		return nil, err
	}
	return users, nil
}
