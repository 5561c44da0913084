package server

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	projection "github.com/hanpama/mongograph/internal/projection"
)

// FindCall records one Find invocation on the mock.
type FindCall struct {
	Collection string
	Filter     bson.M
	Proj       projection.Projection
}

// MockFinder is a Finder backed by canned documents, for tests.
type MockFinder struct {
	Docs  map[string][]bson.M // keyed by collection
	Err   error
	Calls []FindCall
}

func NewMockFinder(docs map[string][]bson.M) *MockFinder {
	return &MockFinder{Docs: docs}
}

func (m *MockFinder) Find(ctx context.Context, collection string, filter bson.M, proj projection.Projection) ([]bson.M, error) {
	m.Calls = append(m.Calls, FindCall{Collection: collection, Filter: filter, Proj: proj})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs[collection], nil
}
