package chat

import (
	"context"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type Repository struct {
	chats store.Collection
}

func NewRepository(g *store.Gateway) *Repository {
	return &Repository{chats: g.Collection(store.Chats)}
}

func (r *Repository) SaveMessage(ctx context.Context, m *Message) error {
	id, err := r.chats.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// GetConversation returns every message between a and b, in either direction, oldest first.
func (r *Repository) GetConversation(ctx context.Context, a, b string) ([]Message, error) {
	return r.find(ctx, a, b, store.FindOptions{SortField: "created_at", Order: store.Ascending})
}

// GetRecentMessages returns the newest limit messages between a and b, newest first.
func (r *Repository) GetRecentMessages(ctx context.Context, a, b string, limit int64) ([]Message, error) {
	return r.find(ctx, a, b, store.FindOptions{SortField: "created_at", Order: store.Descending, Limit: limit})
}

func (r *Repository) find(ctx context.Context, a, b string, opts store.FindOptions) ([]Message, error) {
	messages := make([]Message, 0)
	filter := store.Or{
		{"from": a, "to": b},
		{"from": b, "to": a},
	}
	if err := r.chats.Find(ctx, filter, opts, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
