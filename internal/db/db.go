package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Database struct {
	Conn *sql.DB
}

func NewDatabase(dsn string) (*Database, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return &Database{Conn: conn}, nil
}

// Table quotes a collection name for use as a table identifier.
func Table(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}

// AutoMigrate creates one JSONB document table per collection.
func (d *Database) AutoMigrate(collections []string) error {
	for _, name := range collections {
		t := Table(name)
		queries := []string{
			`CREATE TABLE IF NOT EXISTS ` + t + ` (
            id CHAR(24) PRIMARY KEY,
            doc JSONB NOT NULL,
            inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,
			`CREATE INDEX IF NOT EXISTS ` + pgx.Identifier{name + "_created_at_idx"}.Sanitize() +
				` ON ` + t + ` ((doc->>'created_at'))`,
		}
		for _, query := range queries {
			if _, err := d.Conn.Exec(query); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.Conn.Close()
}
