package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls   int
	history []Turn
	text    string
	images  []Image
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, history []Turn, text string, images []Image) (string, error) {
	f.calls++
	f.history, f.text, f.images = history, text, images
	return f.reply, f.err
}

func newHandler(gen Generator) *Handler {
	return NewHandler(NewService(gen, hclog.NewNullLogger()))
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSearch(t *testing.T) {
	gen := &fakeGenerator{reply: "Gentle stretching helps."}
	h := newHandler(gen)

	rec := post(h.Search, `{"query":"knee stiffness after surgery"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Gentle stretching helps."}`, rec.Body.String())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "knee stiffness after surgery", gen.text)
	assert.Empty(t, gen.history)
}

func TestSearchEmptyQueryNeverCallsProvider(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	h := newHandler(gen)

	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{}`, ``} {
		rec := post(h.Search, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, gen.calls)
}

func TestNotConfigured(t *testing.T) {
	h := newHandler(nil)

	rec := post(h.Search, `{"query":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrNotConfigured.Error())

	rec = post(h.Chat, `{"message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProviderErrorIsRelayed(t *testing.T) {
	h := newHandler(&fakeGenerator{err: errors.New("quota exceeded")})
	rec := post(h.Search, `{"query":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"quota exceeded"}`, rec.Body.String())
}

func TestChatKeepsLastTenTurns(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	h := newHandler(gen)

	history := make([]Turn, 0, 14)
	for i := 0; i < 14; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, Turn{Role: role, Text: fmt.Sprintf("turn %d", i)})
	}
	body, err := json.Marshal(ChatRequest{Message: "and now?", History: history})
	require.NoError(t, err)

	rec := post(h.Chat, string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gen.history, MaxHistory)
	assert.Equal(t, "turn 4", gen.history[0].Text)
	assert.Equal(t, "turn 13", gen.history[9].Text)
	assert.Equal(t, RoleUser, gen.history[0].Role)
	assert.Equal(t, RoleModel, gen.history[1].Role)
	assert.Equal(t, "and now?", gen.text)
}

func TestChatMalformedPayload(t *testing.T) {
	gen := &fakeGenerator{}
	h := newHandler(gen)
	rec := post(h.Chat, `{"message":`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = post(h.Chat, `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gen.calls)
}

func TestAcceptImages(t *testing.T) {
	small := []byte("img")
	big := bytes.Repeat([]byte{1}, MaxImageBytes+1)
	got := AcceptImages([]Image{
		{MIMEType: "image/png", Data: small},
		{MIMEType: "IMAGE/JPEG", Data: small},
		{MIMEType: "image/webp; q=1", Data: small},
		{MIMEType: "image/gif", Data: small},
		{MIMEType: "application/pdf", Data: small},
		{MIMEType: "image/png", Data: big},
		{MIMEType: "image/png"},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "image/png", got[0].MIMEType)
	assert.Equal(t, "image/jpeg", got[1].MIMEType)
	assert.Equal(t, "image/webp", got[2].MIMEType)
}

func TestRecentTurnsSkipsEmpty(t *testing.T) {
	got := RecentTurns([]Turn{{Role: "user", Text: "hi"}, {Role: "bot", Text: ""}, {Role: "bot", Text: "hello"}})
	assert.Equal(t, []Turn{{Role: RoleUser, Text: "hi"}, {Role: RoleModel, Text: "hello"}}, got)
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte, types map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		hdr.Set("Content-Type", types[name])
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestChatMultipart(t *testing.T) {
	gen := &fakeGenerator{reply: "That looks like a healing incision."}
	h := newHandler(gen)

	req := multipartRequest(t,
		map[string]string{
			"message": "does this look ok?",
			"history": `[{"role":"user","text":"I had surgery"},{"role":"model","text":"How are you feeling?"}]`,
		},
		map[string][]byte{"scar.png": []byte("png-bytes"), "notes.txt": []byte("text")},
		map[string]string{"scar.png": "image/png", "notes.txt": "text/plain"},
	)
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"text":"That looks like a healing incision."}`, rec.Body.String())
	assert.Equal(t, "does this look ok?", gen.text)
	assert.Len(t, gen.history, 2)
	require.Len(t, gen.images, 1)
	assert.Equal(t, "image/png", gen.images[0].MIMEType)
	assert.Equal(t, []byte("png-bytes"), gen.images[0].Data)
}

func TestChatMultipartBadHistory(t *testing.T) {
	gen := &fakeGenerator{}
	h := newHandler(gen)
	req := multipartRequest(t, map[string]string{"message": "hi", "history": "not json"}, nil, nil)
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, gen.calls)
}

func TestChatImageOnly(t *testing.T) {
	gen := &fakeGenerator{reply: "I see a bandage."}
	h := newHandler(gen)
	req := multipartRequest(t, nil,
		map[string][]byte{"a.jpg": []byte("jpeg")},
		map[string]string{"a.jpg": "image/jpeg"},
	)
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gen.text)
	assert.Len(t, gen.images, 1)
}
