// Package store is the document store gateway. It hides the concrete database behind
// named collections that support the handful of operations the handlers need.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Collection names.
const (
	Users       = "users"
	Posts       = "posts"
	Comments    = "comments"
	Likes       = "likes"
	Shares      = "shares"
	Chats       = "chats"
	Connections = "connections"
	Games       = "games"
)

// CollectionNames lists every collection the backend owns.
var CollectionNames = []string{Users, Posts, Comments, Likes, Shares, Chats, Connections, Games}

// Backend drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverBunt     = "bunt"
)

const (
	DefaultURI      = "mongodb://localhost:27017"
	DefaultDatabase = "hophacks"
)

// ErrNotFound is returned when no document matches a filter.
var ErrNotFound = errors.New("document not found")

type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// FindOptions controls ordering and size of a Find. A zero Limit means no limit,
// an empty SortField keeps the store's native order. Documents with equal SortField
// values are ordered by _id in the same direction.
type FindOptions struct {
	SortField string
	Order     SortOrder
	Limit     int64
}

// Collection is a named set of documents. Documents are plain structs tagged for both
// bson and json; the "_id" field is assigned by the store on insert.
type Collection interface {
	InsertOne(ctx context.Context, doc any) (ID, error)
	InsertMany(ctx context.Context, docs []any) ([]ID, error)
	FindOne(ctx context.Context, filter Filter, out any) error
	Find(ctx context.Context, filter Filter, opts FindOptions, out any) error
	// Increment atomically adds delta to a numeric field of one document.
	Increment(ctx context.Context, id ID, field string, delta int64) error
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

// Backend is a connected database.
type Backend interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

type Config struct {
	Driver   string `mapstructure:"driver"`
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Path     string `mapstructure:"path"`
}

// Gateway owns the connection lifecycle and hands out collections.
type Gateway struct {
	backend Backend
}

func NewGateway(b Backend) *Gateway {
	return &Gateway{backend: b}
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger hclog.Logger) (*Gateway, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case DriverMongo, "":
		uri := cfg.URI
		if uri == "" {
			uri = DefaultURI
		}
		b, err = OpenMongo(ctx, uri, databaseName(cfg))
	case DriverPostgres:
		b, err = OpenPostgres(cfg.URI)
	case DriverMemory:
		b, err = OpenBunt(":memory:")
	case DriverBunt:
		b, err = OpenBunt(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("document store ready", "driver", cfg.Driver, "database", databaseName(cfg))
	return NewGateway(b), nil
}

// OpenMemory returns a gateway over a fresh in-memory database.
func OpenMemory() (*Gateway, error) {
	b, err := OpenBunt(":memory:")
	if err != nil {
		return nil, err
	}
	return NewGateway(b), nil
}

func databaseName(cfg Config) string {
	if cfg.Database == "" {
		return DefaultDatabase
	}
	return cfg.Database
}

func (g *Gateway) Collection(name string) Collection {
	return g.backend.Collection(name)
}

func (g *Gateway) Close(ctx context.Context) error {
	return g.backend.Close(ctx)
}
