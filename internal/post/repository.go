package post

import (
	"context"
	"fmt"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type Repository struct {
	posts    store.Collection
	comments store.Collection
	likes    store.Collection
	shares   store.Collection
}

func NewRepository(g *store.Gateway) *Repository {
	return &Repository{
		posts:    g.Collection(store.Posts),
		comments: g.Collection(store.Comments),
		likes:    g.Collection(store.Likes),
		shares:   g.Collection(store.Shares),
	}
}

func (r *Repository) CreatePost(ctx context.Context, p *Post) (*Post, error) {
	id, err := r.posts.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id store.ID) (*Post, error) {
	p := &Post{}
	if err := r.posts.FindOne(ctx, store.ByID(id), p); err != nil {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), err)
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	return p, nil
}

// ListPosts returns the newest posts first.
func (r *Repository) ListPosts(ctx context.Context, limit int64) ([]Post, error) {
	posts := make([]Post, 0)
	opts := store.FindOptions{SortField: "created_at", Order: store.Descending, Limit: limit}
	if err := r.posts.Find(ctx, store.All, opts, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Media == nil {
			posts[i].Media = []string{}
		}
	}
	return posts, nil
}

// IncrementCounter bumps one of the post counters by one.
func (r *Repository) IncrementCounter(ctx context.Context, id store.ID, field string) error {
	if err := r.posts.Increment(ctx, id, field, 1); err != nil {
		return fmt.Errorf("post %s: %w", id.Hex(), err)
	}
	return nil
}

func (r *Repository) SaveLike(ctx context.Context, l *Like) error {
	id, err := r.likes.InsertOne(ctx, l)
	l.ID = id
	return err
}

func (r *Repository) SaveComment(ctx context.Context, c *Comment) error {
	id, err := r.comments.InsertOne(ctx, c)
	c.ID = id
	return err
}

func (r *Repository) SaveShare(ctx context.Context, s *Share) error {
	id, err := r.shares.InsertOne(ctx, s)
	s.ID = id
	return err
}

func (r *Repository) CommentsFor(ctx context.Context, postID store.ID) ([]Comment, error) {
	comments := make([]Comment, 0)
	opts := store.FindOptions{SortField: "created_at", Order: store.Ascending}
	if err := r.comments.Find(ctx, store.Eq{"post_id": postID}, opts, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
