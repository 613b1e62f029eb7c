package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqttlog/internal/event"
	"mqttlog/internal/store"
	apperrors "mqttlog/pkg/errors"
)

type fakeStore struct {
	lastFilter store.Filter
	queried    bool

	records []event.Record
	topics  []store.TopicCount
	stats   *store.Stats
	err     error
}

func (f *fakeStore) Append(ctx context.Context, rec *event.Record) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Query(ctx context.Context, filter store.Filter) ([]event.Record, error) {
	f.queried = true
	f.lastFilter = filter
	return f.records, f.err
}

func (f *fakeStore) ListTopics(ctx context.Context) ([]store.TopicCount, error) {
	return f.topics, f.err
}

func (f *fakeStore) Stats(ctx context.Context) (*store.Stats, error) {
	return f.stats, f.err
}

func (f *fakeStore) Close() error {
	return nil
}

func TestEventsAppliesDefaultLimit(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, 50, fs.lastFilter.Limit)
	assert.Nil(t, fs.lastFilter.Pattern)
	assert.True(t, fs.lastFilter.Since.IsZero())
}

func TestEventsPassesExplicitLimit(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{Limit: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, fs.lastFilter.Limit)
}

func TestEventsRejectsExcessiveLimit(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{Limit: 1001})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.False(t, fs.queried)
}

func TestEventsRejectsMalformedPatternBeforeStore(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{TopicPattern: "a/#/b"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.False(t, fs.queried)
}

func TestEventsRejectsMalformedSinceBeforeStore(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{Since: "5x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.False(t, fs.queried)
}

func TestEventsResolvesSinceAgainstClock(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	_, err := engine.Events(context.Background(), Params{Since: "1h"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(-time.Hour), fs.lastFilter.Since)
}

func TestEventsParsesTopicPattern(t *testing.T) {
	fs := &fakeStore{}
	engine := NewEngine(fs)

	_, err := engine.Events(context.Background(), Params{TopicPattern: "sensors/+/temp"})
	require.NoError(t, err)
	require.NotNil(t, fs.lastFilter.Pattern)
	assert.Equal(t, "sensors/+/temp", fs.lastFilter.Pattern.String())
}

func TestTopicsAndStatsDelegate(t *testing.T) {
	fs := &fakeStore{
		topics: []store.TopicCount{{Topic: "a/b", Count: 3}},
		stats:  &store.Stats{TotalEvents: 3, DistinctTopics: 1},
	}
	engine := NewEngine(fs)

	topics, err := engine.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fs.topics, topics)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fs.stats, stats)
}
