package chat

import (
	"fmt"
	"sort"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

// Message is one direct message between two participants.
type Message struct {
	ID        store.ID   `bson:"_id" json:"_id"`
	From      string     `bson:"from" json:"from"`
	To        string     `bson:"to" json:"to"`
	Text      string     `bson:"text" json:"text"`
	CreatedAt store.Time `bson:"created_at" json:"created_at"`
}

// SendRequest is the body of POST /chats/{a}/{b}.
type SendRequest struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// Recipient picks the other participant of the a/b conversation. A sender that is
// neither participant is treated as a, so the message goes to a.
func Recipient(a, b, from string) string {
	if from == a {
		return b
	}
	return a
}

// ConversationKey identifies the a/b conversation regardless of participant order.
// The first id is length-prefixed so ids containing the separator cannot collide.
func ConversationKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return fmt.Sprintf("%d:%s|%s", len(pair[0]), pair[0], pair[1])
}
