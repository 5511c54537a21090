package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/team-gbm/hophacks-2025-backend/internal/advisor"
	"github.com/team-gbm/hophacks-2025-backend/internal/catalog"
	"github.com/team-gbm/hophacks-2025-backend/internal/chat"
	"github.com/team-gbm/hophacks-2025-backend/internal/config"
	"github.com/team-gbm/hophacks-2025-backend/internal/logger"
	"github.com/team-gbm/hophacks-2025-backend/internal/media"
	"github.com/team-gbm/hophacks-2025-backend/internal/post"
	"github.com/team-gbm/hophacks-2025-backend/internal/server"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
	"github.com/team-gbm/hophacks-2025-backend/internal/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Document store
	gateway, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer gateway.Close(context.Background())

	// 3. Redis (optional)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info("connected to redis", "addr", cfg.Redis.Addr)
	} else {
		log.Info("redis not configured, chat fan-out is local to this instance")
	}

	// 4. Chat hub
	hub := chat.NewHub(redisClient, log)
	go hub.Run(ctx)
	go hub.SubscribeToRedis(ctx)

	// 5. AI provider (optional)
	var gen advisor.Generator
	gemini, err := advisor.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model)
	switch {
	case errors.Is(err, advisor.ErrNotConfigured):
		log.Warn("no AI API key set, /ai routes will fail")
	case err != nil:
		return err
	default:
		defer gemini.Close()
		gen = gemini
		log.Info("AI provider ready", "model", cfg.AI.Model)
	}

	// 6. Media uploads (optional)
	var signer media.Signer
	if cfg.Media.Bucket != "" {
		s3Signer, err := media.NewS3Signer(ctx, cfg.Media.Bucket, cfg.Media.Region)
		if err != nil {
			return err
		}
		signer = s3Signer
		log.Info("media uploads enabled", "bucket", cfg.Media.Bucket, "region", cfg.Media.Region)
	}

	// 7. Routes
	router := server.NewRouter(server.Deps{
		Logger:  log,
		Origins: cfg.Origins(),
		Users:   user.NewHandler(user.NewService(user.NewRepository(gateway))),
		Posts:   post.NewHandler(post.NewService(post.NewRepository(gateway))),
		Chats:   chat.NewHandler(chat.NewRepository(gateway), hub, log),
		Catalog: catalog.NewHandler(catalog.NewRepository(gateway)),
		Advisor: advisor.NewHandler(advisor.NewService(gen, log)),
		Media:   media.NewHandler(signer),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          log.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
