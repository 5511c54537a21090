package store

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Filter selects documents. Only equality matching is supported.
type Filter interface {
	toBSON() bson.M
}

// Eq matches documents whose fields equal every given value. An empty Eq matches all.
type Eq map[string]any

// Or matches documents that satisfy any of its alternatives.
type Or []Eq

// All matches every document.
var All = Eq{}

func ByID(id ID) Eq {
	return Eq{"_id": id}
}

func (e Eq) toBSON() bson.M {
	m := bson.M{}
	for k, v := range e {
		m[k] = v
	}
	return m
}

func (o Or) toBSON() bson.M {
	alts := bson.A{}
	for _, e := range o {
		alts = append(alts, e.toBSON())
	}
	return bson.M{"$or": alts}
}

// alternatives flattens a filter into OR-ed equality sets for the JSON backends.
func alternatives(f Filter) []Eq {
	switch f := f.(type) {
	case nil:
		return []Eq{All}
	case Eq:
		return []Eq{f}
	case Or:
		return f
	default:
		panic(fmt.Sprintf("store: unsupported filter %T", f))
	}
}

// sortedKeys gives a stable field order so generated SQL is deterministic.
func (e Eq) sortedKeys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// textValue is the string form a value takes inside a JSON document.
func textValue(v any) string {
	switch v := v.(type) {
	case ID:
		return v.Hex()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
