// Package server assembles the HTTP surface.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/rs/cors"

	"github.com/team-gbm/hophacks-2025-backend/internal/advisor"
	"github.com/team-gbm/hophacks-2025-backend/internal/catalog"
	"github.com/team-gbm/hophacks-2025-backend/internal/chat"
	"github.com/team-gbm/hophacks-2025-backend/internal/media"
	myMiddleware "github.com/team-gbm/hophacks-2025-backend/internal/middleware"
	"github.com/team-gbm/hophacks-2025-backend/internal/post"
	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
	"github.com/team-gbm/hophacks-2025-backend/internal/user"
)

// Deps are the feature handlers the router mounts.
type Deps struct {
	Logger  hclog.Logger
	Origins []string
	Users   *user.Handler
	Posts   *post.Handler
	Chats   *chat.Handler
	Catalog *catalog.Handler
	Advisor *advisor.Handler
	Media   *media.Handler
}

// NewRouter mounts every route at the root and again under /api.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(myMiddleware.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"message": "backend running"})
	})
	api := func(r chi.Router) {
		r.Get("/health", health)
		r.Post("/echo", echo)
		r.Route("/users", d.Users.Routes)
		r.Route("/posts", d.Posts.Routes)
		r.Route("/chats", d.Chats.Routes)
		r.Get("/connections", d.Catalog.Connections)
		r.Get("/games", d.Catalog.Games)
		r.Route("/ai", d.Advisor.Routes)
		r.Route("/media", d.Media.Routes)
	}
	api(r)
	r.Route("/api", api)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// echo returns the request body; anything that is not JSON echoes as {}.
func echo(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := respond.Decode(r, &body); err != nil || body == nil {
		body = map[string]any{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"you_sent": body})
}
