package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type fixture struct {
	router  http.Handler
	hub     *Hub
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { g.Close(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := hclog.NewNullLogger()
	hub := NewHub(nil, logger)
	go hub.Run(ctx)

	h := NewHandler(NewRepository(g), hub, logger)
	r := chi.NewRouter()
	r.Route("/chats", h.Routes)
	return &fixture{router: r, hub: hub, handler: h}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) history(t *testing.T, a, b string) []Message {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/chats/"+a+"/"+b, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	return msgs
}

func TestSendThenHistory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/chats/A/B", `{"from":"A","text":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	msgs := f.history(t, "A", "B")
	require.Len(t, msgs, 1)
	assert.Equal(t, "A", msgs[0].From)
	assert.Equal(t, "B", msgs[0].To)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.False(t, msgs[0].ID.IsZero())
}

func TestHistoryBothDirectionsOldestFirst(t *testing.T) {
	f := newFixture(t)
	clock := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)
	f.handler.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/chats/A/B", `{"from":"A","text":"one"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/chats/B/A", `{"from":"B","text":"two"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/chats/A/C", `{"from":"A","text":"elsewhere"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/chats/A/B", `{"from":"B","text":"three"}`).Code)

	for _, path := range [][2]string{{"A", "B"}, {"B", "A"}} {
		msgs := f.history(t, path[0], path[1])
		require.Len(t, msgs, 3)
		assert.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
	}
	assert.Empty(t, f.history(t, "B", "C"))
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/chats/A/B", `{"from":"A"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/chats/A/B", `{"text":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/chats/A/B", `{"from":`).Code)
}

func TestSenderOutsideConversationIsStoredToFirstParticipant(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/chats/A/B", `{"from":"Z","text":"who am i"}`).Code)

	assert.Empty(t, f.history(t, "A", "B"))
	msgs := f.history(t, "Z", "A")
	require.Len(t, msgs, 1)
	assert.Equal(t, "A", msgs[0].To)
}

func TestRecipient(t *testing.T) {
	assert.Equal(t, "B", Recipient("A", "B", "A"))
	assert.Equal(t, "A", Recipient("A", "B", "B"))
	assert.Equal(t, "A", Recipient("A", "B", "Z"))
	assert.Equal(t, ConversationKey("A", "B"), ConversationKey("B", "A"))
}

func TestConversationKeySeparatorInIDs(t *testing.T) {
	assert.NotEqual(t, ConversationKey("x|y", "z"), ConversationKey("x", "y|z"))
	assert.NotEqual(t, ConversationKey("a|", "b"), ConversationKey("a", "|b"))
	assert.Equal(t, ConversationKey("x|y", "z"), ConversationKey("z", "x|y"))
}

func TestWebsocketReplayMatchesHistoryWithinOneSecond(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)
	f.handler.now = func() time.Time { return fixed }

	for _, text := range []string{"first", "second", "third"} {
		rec := f.do(t, http.MethodPost, "/chats/A/B", `{"from":"A","text":"`+text+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	history := f.history(t, "A", "B")
	require.Len(t, history, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{history[0].Text, history[1].Text, history[2].Text})

	srv := httptest.NewServer(f.router)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/chats/A/B/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	replay := make([]string, 0, 3)
	for range history {
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		replay = append(replay, m.Text)
	}
	assert.Equal(t, []string{history[0].Text, history[1].Text, history[2].Text}, replay)
}

func TestReplayedMessageIsNotSentTwice(t *testing.T) {
	replayedID := store.NewID()
	c := &Client{replayed: map[string]struct{}{replayedID.Hex(): {}}}

	replayed, err := json.Marshal(&Message{ID: replayedID, From: "A", To: "B", Text: "raced"})
	require.NoError(t, err)
	fresh, err := json.Marshal(&Message{ID: store.NewID(), From: "A", To: "B", Text: "new"})
	require.NoError(t, err)

	assert.False(t, c.replayedAlready(fresh))
	assert.True(t, c.replayedAlready(replayed))
	assert.False(t, c.replayedAlready(replayed), "an id is only skipped once")
	assert.False(t, (&Client{}).replayedAlready(fresh))
}

func TestWebsocketReceivesNewMessages(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chats/B/A/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/chats/A/B", "application/json", strings.NewReader(`{"from":"A","text":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "A", got.From)
	assert.Equal(t, "B", got.To)
	assert.Equal(t, "hi", got.Text)
}

func TestHubBroadcastsToRoomOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil, hclog.NewNullLogger())
	go hub.Run(ctx)

	ab := &Client{Hub: hub, Send: make(chan []byte, 1), Room: ConversationKey("A", "B")}
	ac := &Client{Hub: hub, Send: make(chan []byte, 1), Room: ConversationKey("A", "C")}
	require.True(t, hub.register(ctx, ab))
	require.True(t, hub.register(ctx, ac))

	require.NoError(t, hub.Publish(ctx, &Message{From: "B", To: "A", Text: "hey"}))

	select {
	case payload := <-ab.Send:
		var m Message
		require.NoError(t, json.Unmarshal(payload, &m))
		assert.Equal(t, "hey", m.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, ac.Send)

	hub.unregister(ab)
	cancel()
	<-hub.done
	_, open := <-ab.Send
	assert.False(t, open)
	_, open = <-ac.Send
	assert.False(t, open)
}
