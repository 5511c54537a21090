package post

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

type fixture struct {
	router http.Handler
	svc    *Service
	likes  store.Collection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { g.Close(context.Background()) })

	svc := NewService(NewRepository(g))
	r := chi.NewRouter()
	r.Route("/posts", NewHandler(svc).Routes)
	return &fixture{router: r, svc: svc, likes: g.Collection(store.Likes)}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) create(t *testing.T, body string) Post {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/posts", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (f *fixture) get(t *testing.T, id store.ID) Post {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/posts/"+id.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestCreateInitialisesCounters(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"first walk without crutches","likes":40}`)

	assert.False(t, p.ID.IsZero())
	assert.Equal(t, "u1", p.AuthorID)
	assert.Zero(t, p.Likes)
	assert.Zero(t, p.Comments)
	assert.Zero(t, p.Shares)
	assert.NotNil(t, p.Media)
}

func TestGetReturnsDocumentWithSameID(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello","media":["https://cdn.test/a.png"]}`)

	rec := f.do(t, http.MethodGet, "/posts/"+p.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, p.ID.Hex(), raw["_id"])
	assert.Equal(t, []any{"https://cdn.test/a.png"}, raw["media"])
}

func TestGetValidation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/posts/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/posts/"+store.NewID().Hex(), "").Code)
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, 9, 13, 8, 0, 0, 0, time.UTC)
	for _, h := range []int{3, 1, 5, 2, 4} {
		ts := base.Add(time.Duration(h) * time.Hour).Format(time.RFC3339)
		f.create(t, fmt.Sprintf(`{"author_id":"u1","content":"post %d","created_at":%q}`, h, ts))
	}

	rec := f.do(t, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 5)
	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i-1].CreatedAt.After(posts[i].CreatedAt.Time), "posts %d and %d out of order", i-1, i)
	}
	assert.Equal(t, "post 5", posts[0].Content)
}

func TestListOrdersPostsWithinOneSecond(t *testing.T) {
	f := newFixture(t)
	clock := time.Date(2025, 9, 13, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		clock = clock.Add(100 * time.Millisecond)
		return clock
	}
	older := f.create(t, `{"author_id":"u1","content":"older"}`)
	newer := f.create(t, `{"author_id":"u1","content":"newer"}`)
	assert.True(t, newer.CreatedAt.After(older.CreatedAt.Time))

	rec := f.do(t, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Content)
	assert.Equal(t, "older", posts[1].Content)
}

func TestListEmpty(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/posts", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestLikeTwiceCountsTwice(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello"}`)

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/posts/"+p.ID.Hex()+"/like", `{"user_id":"u2"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	}

	assert.EqualValues(t, 2, f.get(t, p.ID).Likes)

	var likes []Like
	require.NoError(t, f.likes.Find(context.Background(), store.Eq{"post_id": p.ID}, store.FindOptions{}, &likes))
	assert.Len(t, likes, 2)
}

func TestLikeValidation(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello"}`)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/posts/bad/like", `{"user_id":"u2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/posts/"+p.ID.Hex()+"/like", `{}`).Code)

	missing := store.NewID()
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/posts/"+missing.Hex()+"/like", `{"user_id":"u2"}`).Code)
	var likes []Like
	require.NoError(t, f.likes.Find(context.Background(), store.Eq{"post_id": missing}, store.FindOptions{}, &likes))
	assert.Empty(t, likes)
}

func TestComment(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello"}`)
	path := "/posts/" + p.ID.Hex() + "/comment"

	rec := f.do(t, http.MethodPost, path, `{"user_id":"u2","text":"well done!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.EqualValues(t, 1, f.get(t, p.ID).Comments)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, path, `{"user_id":"u2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, path, `{"text":"hi"}`).Code)

	rec = f.do(t, http.MethodGet, "/posts/"+p.ID.Hex()+"/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "well done!", comments[0].Text)
	assert.Equal(t, p.ID, comments[0].PostID)
}

func TestShare(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello"}`)

	rec := f.do(t, http.MethodPost, "/posts/"+p.ID.Hex()+"/share", `{"user_id":"u3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.EqualValues(t, 1, f.get(t, p.ID).Shares)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/posts/"+p.ID.Hex()+"/share", `{}`).Code)
}

func TestCounterIncrementsAreIndependent(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, `{"author_id":"u1","content":"hello"}`)
	ctx := context.Background()

	require.NoError(t, f.svc.Like(ctx, p.ID, "a"))
	require.NoError(t, f.svc.Share(ctx, p.ID, "b"))
	require.NoError(t, f.svc.Comment(ctx, p.ID, "c", "nice"))
	require.NoError(t, f.svc.Comment(ctx, p.ID, "d", "great"))

	got := f.get(t, p.ID)
	assert.EqualValues(t, 1, got.Likes)
	assert.EqualValues(t, 1, got.Shares)
	assert.EqualValues(t, 2, got.Comments)
	assert.Equal(t, "hello", got.Content)
}
