package store

import "go.mongodb.org/mongo-driver/v2/bson"

// ID is a store-assigned document identifier, rendered as 24 hex characters.
type ID = bson.ObjectID

func NewID() ID {
	return bson.NewObjectID()
}

// DecodeID converts a request-supplied identifier. ok is false for anything that is
// not a well-formed identifier.
func DecodeID(raw string) (id ID, ok bool) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return ID{}, false
	}
	return id, true
}
