package events

import "time"

// MongoQueryStart is emitted before a projected find against a collection.
type MongoQueryStart struct {
	Collection string
	PathCount  int
}

// MongoQueryFinish is emitted after a projected find returns.
type MongoQueryFinish struct {
	Collection string
	Documents  int
	Err        error
	Duration   time.Duration
}
