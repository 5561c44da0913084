package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	projection "github.com/hanpama/mongograph/internal/projection"
)

// Store executes compiled projections against one MongoDB database.
type Store struct {
	db *mongo.Database
}

// Connect dials the MongoDB deployment at uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{db: client.Database(database)}, nil
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// Find fetches the documents matching filter, retrieving only the storage
// paths named by the compiled projection.
func (s *Store) Find(ctx context.Context, collection string, filter bson.M, proj projection.Projection) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	start := time.Now()
	eventbus.Publish(ctx, events.MongoQueryStart{Collection: collection, PathCount: len(proj)})

	var docs []bson.M
	cur, err := s.db.Collection(collection).Find(ctx, filter,
		options.Find().SetProjection(ProjectionDoc(proj)))
	if err == nil {
		err = cur.All(ctx, &docs)
	}

	eventbus.Publish(ctx, events.MongoQueryFinish{
		Collection: collection,
		Documents:  len(docs),
		Err:        err,
		Duration:   time.Since(start),
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return docs, nil
}

// FindOne fetches a single document matching filter, retrieving only the
// storage paths named by the compiled projection. A missing document is
// returned as nil without error.
func (s *Store) FindOne(ctx context.Context, collection string, filter bson.M, proj projection.Projection) (bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	start := time.Now()
	eventbus.Publish(ctx, events.MongoQueryStart{Collection: collection, PathCount: len(proj)})

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter,
		options.FindOne().SetProjection(ProjectionDoc(proj))).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		err = nil
		doc = nil
	}

	documents := 0
	if doc != nil {
		documents = 1
	}
	eventbus.Publish(ctx, events.MongoQueryFinish{
		Collection: collection,
		Documents:  documents,
		Err:        err,
		Duration:   time.Since(start),
	})
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return doc, nil
}

// ProjectionDoc renders a compiled projection as a MongoDB projection
// document. Paths are emitted in sorted order so query shapes stay stable;
// _id is suppressed unless it was requested explicitly.
func ProjectionDoc(p projection.Projection) bson.D {
	doc := make(bson.D, 0, len(p)+1)
	for _, path := range p.Paths() {
		doc = append(doc, bson.E{Key: path, Value: 1})
	}
	if !p["_id"] {
		doc = append(doc, bson.E{Key: "_id", Value: 0})
	}
	return doc
}
