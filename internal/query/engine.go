// Package query translates user-facing query arguments (topic filters,
// relative time expressions, result caps) into event store lookups. It
// keeps no state between calls.
package query

import (
	"context"
	"time"

	"mqttlog/internal/constants"
	"mqttlog/internal/event"
	"mqttlog/internal/store"
	"mqttlog/internal/topic"
	apperrors "mqttlog/pkg/errors"
	"mqttlog/pkg/metrics"
)

type Params struct {
	TopicPattern string
	Since        string
	Limit        int
}

type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(st store.Store) *Engine {
	return &Engine{
		store: st,
		now:   time.Now,
	}
}

// Events parses the params and runs the store query, newest first.
// Parse failures surface before the store is touched. The since
// expression is resolved against the clock here, at execution time.
func (e *Engine) Events(ctx context.Context, p Params) ([]event.Record, error) {
	f := store.Filter{Limit: p.Limit}
	if f.Limit == 0 {
		f.Limit = constants.DefaultQueryLimit
	}
	if f.Limit > constants.MaxQueryLimit {
		return nil, apperrors.ErrInvalidArgument.WithDetail("message",
			"limit exceeds the maximum of 1000")
	}

	if p.TopicPattern != "" {
		pattern, err := topic.Parse(p.TopicPattern)
		if err != nil {
			return nil, err
		}
		f.Pattern = pattern
	}

	if p.Since != "" {
		d, err := ParseSince(p.Since)
		if err != nil {
			return nil, err
		}
		f.Since = e.now().Add(-d)
	}

	start := time.Now()
	records, err := e.store.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	metrics.ObserveQueryDuration("events", time.Since(start))

	return records, nil
}

func (e *Engine) Topics(ctx context.Context) ([]store.TopicCount, error) {
	start := time.Now()
	topics, err := e.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ObserveQueryDuration("topics", time.Since(start))

	return topics, nil
}

func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	start := time.Now()
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ObserveQueryDuration("stats", time.Since(start))

	return stats, nil
}
