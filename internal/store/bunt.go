package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"
)

// BuntBackend is an embedded JSON document store. Opened on ":memory:" it is the
// in-process stand-in for the real database, used in tests and local development.
type BuntBackend struct {
	db *buntdb.DB
}

func OpenBunt(path string) (*BuntBackend, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb %s: %w", path, err)
	}
	return &BuntBackend{db: db}, nil
}

func (b *BuntBackend) Collection(name string) Collection {
	return &buntCollection{db: b.db, name: name}
}

func (b *BuntBackend) Close(context.Context) error {
	return b.db.Close()
}

type buntCollection struct {
	db   *buntdb.DB
	name string
}

func (c *buntCollection) key(id ID) string {
	return c.name + ":" + id.Hex()
}

func (c *buntCollection) InsertOne(_ context.Context, doc any) (ID, error) {
	ids, err := c.insert([]any{doc})
	if err != nil {
		return ID{}, err
	}
	return ids[0], nil
}

func (c *buntCollection) InsertMany(_ context.Context, docs []any) ([]ID, error) {
	return c.insert(docs)
}

func (c *buntCollection) insert(docs []any) ([]ID, error) {
	ids := make([]ID, len(docs))
	bodies := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = NewID()
		body, err := jsonDocument(doc, ids[i])
		if err != nil {
			return nil, err
		}
		bodies[i] = string(body)
	}
	err := c.db.Update(func(tx *buntdb.Tx) error {
		for i := range docs {
			if _, _, err := tx.Set(c.key(ids[i]), bodies[i], nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", c.name, err)
	}
	return ids, nil
}

func (c *buntCollection) FindOne(_ context.Context, filter Filter, out any) error {
	var body string
	err := c.db.View(func(tx *buntdb.Tx) error {
		if id, ok := idOnly(filter); ok {
			v, err := tx.Get(c.key(id))
			if err != nil {
				return err
			}
			body = v
			return nil
		}
		found := false
		err := tx.AscendKeys(c.name+":*", func(_, value string) bool {
			if matches(filter, value) {
				body, found = value, true
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if !found {
			return buntdb.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find in %s: %w", c.name, err)
	}
	return decodeOne([]byte(body), out)
}

func (c *buntCollection) Find(_ context.Context, filter Filter, opts FindOptions, out any) error {
	var docs []string
	err := c.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(c.name+":*", func(_, value string) bool {
			if matches(filter, value) {
				docs = append(docs, value)
			}
			return true
		})
	})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c.name, err)
	}

	if opts.SortField != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			if opts.Order == Descending {
				return lessDoc(docs[j], docs[i], opts.SortField)
			}
			return lessDoc(docs[i], docs[j], opts.SortField)
		})
	}
	if opts.Limit > 0 && int64(len(docs)) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	raw := make([][]byte, len(docs))
	for i, d := range docs {
		raw[i] = []byte(d)
	}
	return decodeList(raw, out)
}

func (c *buntCollection) Increment(_ context.Context, id ID, field string, delta int64) error {
	err := c.db.Update(func(tx *buntdb.Tx) error {
		value, err := tx.Get(c.key(id))
		if err != nil {
			return err
		}
		doc := map[string]any{}
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return err
		}
		doc[field] = gjson.Get(value, field).Int() + delta
		body, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(c.key(id), string(body), nil)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment %s.%s: %w", c.name, field, err)
	}
	return nil
}

func (c *buntCollection) DeleteMany(_ context.Context, filter Filter) (int64, error) {
	var deleted int64
	err := c.db.Update(func(tx *buntdb.Tx) error {
		var keys []string
		err := tx.AscendKeys(c.name+":*", func(key, value string) bool {
			if matches(filter, value) {
				keys = append(keys, key)
			}
			return true
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.name, err)
	}
	return deleted, nil
}

// lessDoc orders two documents by field, then by _id.
func lessDoc(a, b, field string) bool {
	fa, fb := gjson.Get(a, field), gjson.Get(b, field)
	if fa.Less(fb, true) {
		return true
	}
	if fb.Less(fa, true) {
		return false
	}
	return gjson.Get(a, "_id").String() < gjson.Get(b, "_id").String()
}

// idOnly reports whether the filter is exactly a lookup by identifier.
func idOnly(f Filter) (ID, bool) {
	eq, ok := f.(Eq)
	if !ok || len(eq) != 1 {
		return ID{}, false
	}
	id, ok := eq["_id"].(ID)
	return id, ok
}

func matches(f Filter, doc string) bool {
	for _, eq := range alternatives(f) {
		if matchesAll(eq, doc) {
			return true
		}
	}
	return false
}

func matchesAll(eq Eq, doc string) bool {
	for k, v := range eq {
		if gjson.Get(doc, k).String() != textValue(v) {
			return false
		}
	}
	return true
}
