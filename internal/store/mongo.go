package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoBackend stores each collection as a MongoDB collection.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoBackend, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &MongoBackend{client: client, db: client.Database(database)}, nil
}

func (b *MongoBackend) Collection(name string) Collection {
	return &mongoCollection{coll: b.db.Collection(name)}
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) (ID, error) {
	id := NewID()
	m, err := bsonDocument(doc, id)
	if err != nil {
		return ID{}, err
	}
	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return ID{}, fmt.Errorf("failed to insert into %s: %w", c.coll.Name(), err)
	}
	return id, nil
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []any) ([]ID, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	ids := make([]ID, len(docs))
	ms := make([]any, len(docs))
	for i, doc := range docs {
		ids[i] = NewID()
		m, err := bsonDocument(doc, ids[i])
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	if _, err := c.coll.InsertMany(ctx, ms); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", c.coll.Name(), err)
	}
	return ids, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	err := c.coll.FindOne(ctx, filterBSON(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find in %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out any) error {
	findOpts := options.Find()
	if opts.SortField != "" {
		findOpts.SetSort(bson.D{
			{Key: opts.SortField, Value: int(opts.Order)},
			{Key: "_id", Value: int(opts.Order)},
		})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	cur, err := c.coll.Find(ctx, filterBSON(filter), findOpts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *mongoCollection) Increment(ctx context.Context, id ID, field string, delta int64) error {
	res, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s.%s: %w", c.coll.Name(), field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filterBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

func filterBSON(f Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return f.toBSON()
}
