package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "chat:"

// Hub fans new messages out to the websocket clients watching a conversation.
// With a Redis client every instance publishes to and subscribes from Redis, so a
// message stored through one instance reaches clients connected to any other.
// Without one, messages are broadcast to local clients only.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan *envelope // Redis or local publish -> clients
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	redis      *redis.Client
	logger     hclog.Logger
}

type envelope struct {
	room    string
	payload []byte
}

func NewHub(redisClient *redis.Client, logger hclog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *envelope),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		redis:      redisClient,
		logger:     logger.Named("hub"),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
			}
			h.rooms = map[string]map[*Client]bool{}
			return

		case client := <-h.Register:
			clients, ok := h.rooms[client.Room]
			if !ok {
				clients = make(map[*Client]bool)
				h.rooms[client.Room] = clients
			}
			clients[client] = true

		case client := <-h.Unregister:
			h.remove(client)

		case env := <-h.broadcast:
			for client := range h.rooms[env.room] {
				select {
				case client.Send <- env.payload:
				default:
					h.logger.Warn("dropping slow client", "room", env.room)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.Room]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
}

// Publish announces a stored message to everyone watching its conversation.
func (h *Hub) Publish(ctx context.Context, m *Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	room := ConversationKey(m.From, m.To)

	if h.redis != nil {
		if err := h.redis.Publish(ctx, channelPrefix+room, payload).Err(); err != nil {
			return fmt.Errorf("failed to publish to redis: %w", err)
		}
		return nil
	}

	select {
	case h.broadcast <- &envelope{room: room, payload: payload}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubscribeToRedis forwards messages published by any instance to local clients.
// It returns immediately when the hub has no Redis client.
func (h *Hub) SubscribeToRedis(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			env := &envelope{
				room:    strings.TrimPrefix(msg.Channel, channelPrefix),
				payload: []byte(msg.Payload),
			}
			select {
			case h.broadcast <- env:
			case <-h.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) register(ctx context.Context, client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}
