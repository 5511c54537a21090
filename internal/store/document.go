package store

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// bsonDocument marshals doc and stamps it with id, replacing any "_id" it carried.
func bsonDocument(doc any, id ID) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	m["_id"] = id
	return m, nil
}

// jsonDocument is the JSON counterpart of bsonDocument.
func jsonDocument(doc any, id ID) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	m["_id"] = id.Hex()
	return json.Marshal(m)
}

// decodeList unmarshals a set of JSON documents into out, a pointer to a slice.
func decodeList(docs [][]byte, out any) error {
	buf := make([]byte, 0, 2+len(docs)*64)
	buf = append(buf, '[')
	for i, d := range docs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, d...)
	}
	buf = append(buf, ']')
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}
	return nil
}

func decodeOne(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
