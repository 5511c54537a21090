package user

import "github.com/team-gbm/hophacks-2025-backend/internal/store"

const DefaultRole = "patient"

type User struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	Name      string     `bson:"name" json:"name"`
	Bio       string     `bson:"bio" json:"bio"`
	Role      string     `bson:"role" json:"role"`
	Password  string     `bson:"password,omitempty" json:"password,omitempty"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

// Public returns a copy that is safe to send to clients.
func (u User) Public() User {
	u.Password = ""
	return u
}

type CreateRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	CreatedAt string `json:"created_at"`
}
