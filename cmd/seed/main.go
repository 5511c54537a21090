// Seed tool: fills the document store with sample users, posts and the reference
// data the frontend lists (connections and games).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/team-gbm/hophacks-2025-backend/internal/catalog"
	"github.com/team-gbm/hophacks-2025-backend/internal/config"
	"github.com/team-gbm/hophacks-2025-backend/internal/logger"
	"github.com/team-gbm/hophacks-2025-backend/internal/post"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
	"github.com/team-gbm/hophacks-2025-backend/internal/user"
)

func main() {
	flagSet := config.GetFlagSet()
	reset := flagSet.Bool("reset", true, "clear the seeded collections first")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Read(flagSet)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	gateway, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer gateway.Close(ctx)

	start := time.Now()
	if err := seed(ctx, gateway, log, *reset, time.Now()); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("done", "elapsed", time.Since(start).Truncate(time.Millisecond))
}

func seed(ctx context.Context, g *store.Gateway, log hclog.Logger, reset bool, now time.Time) error {
	if reset {
		for _, name := range []string{store.Users, store.Posts, store.Connections, store.Games, store.Likes, store.Comments, store.Shares} {
			n, err := g.Collection(name).DeleteMany(ctx, store.All)
			if err != nil {
				return fmt.Errorf("clear %s: %w", name, err)
			}
			log.Debug("cleared collection", "collection", name, "deleted", n)
		}
	}

	userIDs, err := g.Collection(store.Users).InsertMany(ctx, sampleUsers())
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	log.Info("inserted users", "count", len(userIDs))

	postIDs, err := g.Collection(store.Posts).InsertMany(ctx, samplePosts(userIDs[len(userIDs)-1].Hex(), now))
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	log.Info("inserted posts", "count", len(postIDs))

	connIDs, err := g.Collection(store.Connections).InsertMany(ctx, sampleConnections())
	if err != nil {
		return fmt.Errorf("seed connections: %w", err)
	}
	log.Info("inserted connections", "count", len(connIDs))

	gameIDs, err := g.Collection(store.Games).InsertMany(ctx, sampleGames())
	if err != nil {
		return fmt.Errorf("seed games: %w", err)
	}
	log.Info("inserted games", "count", len(gameIDs))
	return nil
}

func sampleUsers() []any {
	return []any{
		user.User{
			Name:      "John Doe",
			Bio:       "Staying positive through my recovery journey. One day at a time!",
			Role:      user.DefaultRole,
			CreatedAt: store.Timestamp(time.Date(2023, 10, 20, 10, 0, 0, 0, time.UTC)),
		},
		user.User{
			Name:      "Sarah K.",
			Bio:       "Recovering from ACL surgery and staying motivated!",
			Role:      user.DefaultRole,
			CreatedAt: store.Timestamp(time.Date(2023, 9, 15, 14, 30, 0, 0, time.UTC)),
		},
	}
}

func samplePosts(authorID string, now time.Time) []any {
	return []any{
		post.Post{
			AuthorID:  authorID,
			Content:   "Today I managed to walk without crutches for the first time! So proud of this small victory in my recovery journey.",
			Media:     []string{},
			Likes:     12,
			Comments:  4,
			CreatedAt: store.Timestamp(now.Add(-2 * time.Hour)),
		},
		post.Post{
			AuthorID:  authorID,
			Content:   "Finding new ways to manage fatigue has been challenging but rewarding. Meditation and light stretching have helped tremendously.",
			Media:     []string{},
			Likes:     8,
			Comments:  3,
			CreatedAt: store.Timestamp(now.Add(-5 * time.Hour)),
		},
	}
}

func sampleConnections() []any {
	return []any{
		catalog.Connection{Name: "David R.", Condition: "Knee Surgery Recovery", Journey: "Week 3 of recovery", Location: "New York, USA", Status: "Similar journey"},
		catalog.Connection{Name: "Emma W.", Condition: "Multiple Sclerosis", Journey: "Managing symptoms for 2 years", Location: "London, UK", Status: "Can offer advice"},
		catalog.Connection{Name: "James P.", Condition: "Cancer Remission", Journey: "6 months post-treatment", Location: "Toronto, Canada", Status: "Support mentor"},
	}
}

func sampleGames() []any {
	return []any{
		catalog.Game{Title: "Memory Match", Description: "Improve cognitive function with this memory matching game", Category: "Alzheimer's/Cognitive", Difficulty: "Easy"},
		catalog.Game{Title: "Motion Therapy", Description: "Gentle exercises for physical rehabilitation", Category: "Physical Recovery", Difficulty: "Adaptive"},
	}
}
