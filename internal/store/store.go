package store

import (
	"context"
	"time"

	"mqttlog/internal/event"
	"mqttlog/internal/topic"
)

// Filter narrows a Query. A nil Pattern matches every topic; a zero
// Since means no lower time bound. Limit must be positive.
type Filter struct {
	Pattern *topic.Pattern
	Since   time.Time
	Limit   int
}

// TopicCount is one row of the topics breakdown.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

// Stats is the aggregate view over the whole store. The timestamps are
// nil on an empty store.
type Stats struct {
	TotalEvents    int64      `json:"total_events"`
	DistinctTopics int64      `json:"distinct_topics"`
	RetainedEvents int64      `json:"retained_events"`
	FirstEvent     *time.Time `json:"first_event,omitempty"`
	LastEvent      *time.Time `json:"last_event,omitempty"`
}

// Store is the durable append-only event log. Append has a single
// writer (the ingest controller); the read methods tolerate concurrent
// use while writes are in flight.
type Store interface {
	Append(ctx context.Context, rec *event.Record) (int64, error)
	Query(ctx context.Context, f Filter) ([]event.Record, error)
	ListTopics(ctx context.Context) ([]TopicCount, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
