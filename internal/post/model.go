package post

import "github.com/team-gbm/hophacks-2025-backend/internal/store"

// Counter fields on a post.
const (
	FieldLikes    = "likes"
	FieldComments = "comments"
	FieldShares   = "shares"
)

type Post struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	AuthorID  string     `bson:"author_id" json:"author_id"`
	Content   string     `bson:"content" json:"content"`
	Media     []string   `bson:"media" json:"media"`
	Likes     int64      `bson:"likes" json:"likes"`
	Comments  int64      `bson:"comments" json:"comments"`
	Shares    int64      `bson:"shares" json:"shares"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

type Comment struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	PostID    store.ID   `bson:"post_id" json:"post_id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Text      string     `bson:"text" json:"text"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

// Like and Share rows are append-only; nothing stops a user from liking a post twice.
type Like struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	PostID    store.ID   `bson:"post_id" json:"post_id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

type Share struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	PostID    store.ID   `bson:"post_id" json:"post_id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

type CreateRequest struct {
	AuthorID  string   `json:"author_id"`
	Content   string   `json:"content"`
	Media     []string `json:"media"`
	CreatedAt string   `json:"created_at"`
}

// ActionRequest is the body of like, share and comment.
type ActionRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}
