package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/team-gbm/hophacks-2025-backend/internal/db"
)

// PostgresBackend keeps each collection in a table of JSONB documents.
type PostgresBackend struct {
	database *db.Database
}

func OpenPostgres(dsn string) (*PostgresBackend, error) {
	database, err := db.NewDatabase(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := database.AutoMigrate(CollectionNames); err != nil {
		database.Close()
		return nil, err
	}
	return &PostgresBackend{database: database}, nil
}

func (b *PostgresBackend) Collection(name string) Collection {
	return &pgCollection{conn: b.database.Conn, name: name, table: db.Table(name)}
}

func (b *PostgresBackend) Close(context.Context) error {
	return b.database.Close()
}

type pgCollection struct {
	conn  *sql.DB
	name  string
	table string
}

func (c *pgCollection) InsertOne(ctx context.Context, doc any) (ID, error) {
	id := NewID()
	body, err := jsonDocument(doc, id)
	if err != nil {
		return ID{}, err
	}
	query := "INSERT INTO " + c.table + " (id, doc) VALUES ($1, $2::jsonb)"
	if _, err := c.conn.ExecContext(ctx, query, id.Hex(), string(body)); err != nil {
		return ID{}, fmt.Errorf("failed to insert into %s: %w", c.name, err)
	}
	return id, nil
}

func (c *pgCollection) InsertMany(ctx context.Context, docs []any) ([]ID, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := "INSERT INTO " + c.table + " (id, doc) VALUES ($1, $2::jsonb)"
	ids := make([]ID, 0, len(docs))
	for _, doc := range docs {
		id := NewID()
		body, err := jsonDocument(doc, id)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, id.Hex(), string(body)); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", c.name, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *pgCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	where, args := whereClause(filter, 1)
	query := "SELECT doc FROM " + c.table + where + " LIMIT 1"

	var body []byte
	err := c.conn.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find in %s: %w", c.name, err)
	}
	return decodeOne(body, out)
}

func (c *pgCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out any) error {
	where, args := whereClause(filter, 1)
	query := "SELECT doc FROM " + c.table + where
	if opts.SortField != "" {
		args = append(args, opts.SortField)
		query += orderClause(opts.Order, len(args))
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return err
		}
		docs = append(docs, body)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return decodeList(docs, out)
}

func (c *pgCollection) Increment(ctx context.Context, id ID, field string, delta int64) error {
	query := "UPDATE " + c.table +
		" SET doc = jsonb_set(doc, ARRAY[$1::text], to_jsonb(COALESCE((doc->>$1::text)::bigint, 0) + $2::bigint))" +
		" WHERE id = $3"
	res, err := c.conn.ExecContext(ctx, query, field, delta, id.Hex())
	if err != nil {
		return fmt.Errorf("failed to increment %s.%s: %w", c.name, field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	where, args := whereClause(filter, 1)
	res, err := c.conn.ExecContext(ctx, "DELETE FROM "+c.table+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.name, err)
	}
	return res.RowsAffected()
}

// whereClause renders a filter as SQL with positional arguments starting at $first.
func whereClause(f Filter, first int) (string, []any) {
	var (
		args []any
		ors  []string
	)
	for _, eq := range alternatives(f) {
		if len(eq) == 0 {
			return "", nil
		}
		var ands []string
		for _, k := range eq.sortedKeys() {
			if k == "_id" {
				args = append(args, textValue(eq[k]))
				ands = append(ands, fmt.Sprintf("id = $%d", first+len(args)-1))
				continue
			}
			args = append(args, k, textValue(eq[k]))
			ands = append(ands, fmt.Sprintf("doc->>$%d = $%d", first+len(args)-2, first+len(args)-1))
		}
		ors = append(ors, "("+strings.Join(ands, " AND ")+")")
	}
	if len(ors) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(ors, " OR "), args
}

// orderClause sorts by the text of the field bound to placeholder n, then by id.
// The "C" collation compares TimeLayout strings bytewise.
func orderClause(order SortOrder, n int) string {
	dir := "ASC"
	if order == Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(` ORDER BY doc->>$%d COLLATE "C" %s, id %s`, n, dir, dir)
}
