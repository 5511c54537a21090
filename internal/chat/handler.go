package chat

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

// historyReplay is how many recent messages a new websocket receives on connect.
const historyReplay = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may watch a conversation.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	repo   *Repository
	hub    *Hub
	logger hclog.Logger
	now    func() time.Time
}

func NewHandler(repo *Repository, hub *Hub, logger hclog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		hub:    hub,
		logger: logger.Named("chat"),
		now:    time.Now,
	}
}

// Routes mounts the conversation endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/{a}/{b}", h.Send)
	r.Get("/{a}/{b}", h.History)
	r.Get("/{a}/{b}/ws", h.ServeWs)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	a, b := chi.URLParam(r, "a"), chi.URLParam(r, "b")

	var req SendRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.From == "" || req.Text == "" {
		respond.Error(w, http.StatusBadRequest, "from and text are required")
		return
	}
	if req.From != a && req.From != b {
		h.logger.Warn("sender is not a participant", "from", req.From, "a", a, "b", b)
	}

	m := &Message{
		From:      req.From,
		To:        Recipient(a, b, req.From),
		Text:      req.Text,
		CreatedAt: store.Timestamp(h.now()),
	}
	if err := h.repo.SaveMessage(r.Context(), m); err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.hub.Publish(r.Context(), m); err != nil {
		h.logger.Error("failed to publish message", "id", m.ID.Hex(), "error", err)
	}
	respond.OK(w, http.StatusCreated)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.repo.GetConversation(r.Context(), chi.URLParam(r, "a"), chi.URLParam(r, "b"))
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

// ServeWs streams the a/b conversation. The client is registered before the recent
// history is read, so a message stored meanwhile may be both replayed and broadcast;
// the write pump drops the broadcast copy of anything replayed.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	a, b := chi.URLParam(r, "a"), chi.URLParam(r, "b")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: ConversationKey(a, b),
	}
	if !h.hub.register(r.Context(), client) {
		conn.Close()
		return
	}

	// The write pump is not running yet, so this goroutine is the only writer.
	msgs, err := h.repo.GetRecentMessages(r.Context(), a, b, historyReplay)
	if err != nil {
		h.logger.Error("failed to load history", "room", client.Room, "error", err)
	}
	client.replayed = make(map[string]struct{}, len(msgs))
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	for i := len(msgs) - 1; i >= 0; i-- {
		if err := conn.WriteJSON(msgs[i]); err != nil {
			break
		}
		client.replayed[msgs[i].ID.Hex()] = struct{}{}
	}

	go client.WritePump()
	go client.ReadPump()
}
