package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqttlog/internal/config"
	"mqttlog/internal/event"
	"mqttlog/internal/topic"
	apperrors "mqttlog/pkg/errors"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := Open(context.Background(), config.DatabaseConfig{
		Path:              filepath.Join(t.TempDir(), "events.db"),
		RunMigrations:     true,
		BusyTimeoutMillis: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func appendRecord(t *testing.T, st *SQLiteStore, ts time.Time, topic, payload string) *event.Record {
	t.Helper()

	rec := &event.Record{
		Timestamp: ts,
		Topic:     topic,
		Payload:   payload,
		QoS:       0,
	}
	_, err := st.Append(context.Background(), rec)
	require.NoError(t, err)
	return rec
}

func mustParse(t *testing.T, filter string) *topic.Pattern {
	t.Helper()

	p, err := topic.Parse(filter)
	require.NoError(t, err)
	return p
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()

	first := appendRecord(t, st, now, "a/b", "one")
	second := appendRecord(t, st, now, "a/b", "one")
	third := appendRecord(t, st, now, "a/c", "two")

	assert.Greater(t, first.ID, int64(0))
	assert.Greater(t, second.ID, first.ID)
	assert.Greater(t, third.ID, second.ID)
}

func TestAppendPreservesAllFields(t *testing.T) {
	st := openTestStore(t)
	ts := time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC)

	rec := &event.Record{
		Timestamp: ts,
		Topic:     "devices/gw-1/status",
		Sender:    "gw-1",
		Payload:   `{"sender": "gw-1", "online": true}`,
		QoS:       1,
		Retained:  true,
	}
	_, err := st.Append(context.Background(), rec)
	require.NoError(t, err)

	records, err := st.Query(context.Background(), Filter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, "devices/gw-1/status", got.Topic)
	assert.Equal(t, "gw-1", got.Sender)
	assert.Equal(t, rec.Payload, got.Payload)
	assert.False(t, got.Binary)
	assert.Equal(t, byte(1), got.QoS)
	assert.True(t, got.Retained)
}

func TestQueryBinaryFlagDerivedFromPayload(t *testing.T) {
	st := openTestStore(t)
	appendRecord(t, st, time.Now(), "raw/frame", "hex:deadbeef")

	records, err := st.Query(context.Background(), Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Binary)
}

func TestQueryNewestFirstWithLimit(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		appendRecord(t, st, base.Add(time.Duration(i)*time.Second), "a/b", "msg")
	}

	records, err := st.Query(context.Background(), Filter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Greater(t, records[0].ID, records[1].ID)
	assert.Greater(t, records[1].ID, records[2].ID)
}

func TestQueryRejectsNonPositiveLimit(t *testing.T) {
	st := openTestStore(t)

	for _, limit := range []int{0, -1} {
		_, err := st.Query(context.Background(), Filter{Limit: limit})
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidArgument(err))
	}
}

func TestQuerySinceFilter(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	appendRecord(t, st, base, "a/b", "old")
	appendRecord(t, st, base.Add(time.Hour), "a/b", "recent")
	appendRecord(t, st, base.Add(2*time.Hour), "a/b", "newest")

	records, err := st.Query(context.Background(), Filter{
		Since: base.Add(30 * time.Minute),
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newest", records[0].Payload)
	assert.Equal(t, "recent", records[1].Payload)
}

func TestQueryExactTopic(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()

	appendRecord(t, st, now, "a/b", "keep")
	appendRecord(t, st, now, "a/b/c", "drop")
	appendRecord(t, st, now, "a", "drop")

	records, err := st.Query(context.Background(), Filter{
		Pattern: mustParse(t, "a/b"),
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a/b", records[0].Topic)
}

func TestQueryWildcardPatterns(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()

	topics := []string{
		"sensors/s1/temp",
		"sensors/s2/temp",
		"sensors/s1/humidity",
		"sensors/s1/temp/raw",
		"actuators/a1/state",
		"sensors",
	}
	for _, tp := range topics {
		appendRecord(t, st, now, tp, "v")
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{
			filter: "sensors/+/temp",
			want:   []string{"sensors/s1/temp", "sensors/s2/temp"},
		},
		{
			filter: "sensors/#",
			want: []string{
				"sensors", "sensors/s1/humidity", "sensors/s1/temp",
				"sensors/s1/temp/raw", "sensors/s2/temp",
			},
		},
		{
			filter: "#",
			want: []string{
				"actuators/a1/state", "sensors", "sensors/s1/humidity",
				"sensors/s1/temp", "sensors/s1/temp/raw", "sensors/s2/temp",
			},
		},
		{
			filter: "+/+/state",
			want:   []string{"actuators/a1/state"},
		},
		{
			filter: "other/#",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			records, err := st.Query(context.Background(), Filter{
				Pattern: mustParse(t, tt.filter),
				Limit:   100,
			})
			require.NoError(t, err)

			var got []string
			for _, rec := range records {
				got = append(got, rec.Topic)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestQueryWildcardHonorsLimit(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()

	for i := 0; i < 10; i++ {
		appendRecord(t, st, now, "a/b", "v")
	}

	records, err := st.Query(context.Background(), Filter{
		Pattern: mustParse(t, "a/#"),
		Limit:   4,
	})
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestListTopics(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()

	appendRecord(t, st, now, "a/b", "v")
	appendRecord(t, st, now, "a/b", "v")
	appendRecord(t, st, now, "a/b", "v")
	appendRecord(t, st, now, "c/d", "v")

	topics, err := st.ListTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, TopicCount{Topic: "a/b", Count: 3}, topics[0])
	assert.Equal(t, TopicCount{Topic: "c/d", Count: 1}, topics[1])
}

func TestStatsEmptyStore(t *testing.T) {
	st := openTestStore(t)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEvents)
	assert.Equal(t, int64(0), stats.DistinctTopics)
	assert.Equal(t, int64(0), stats.RetainedEvents)
	assert.Nil(t, stats.FirstEvent)
	assert.Nil(t, stats.LastEvent)
}

func TestStats(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	appendRecord(t, st, base, "a/b", "v")
	appendRecord(t, st, base.Add(time.Hour), "c/d", "v")

	retained := &event.Record{Timestamp: base.Add(2 * time.Hour), Topic: "a/b", Payload: "v", Retained: true}
	_, err := st.Append(context.Background(), retained)
	require.NoError(t, err)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.DistinctTopics)
	assert.Equal(t, int64(1), stats.RetainedEvents)
	require.NotNil(t, stats.FirstEvent)
	require.NotNil(t, stats.LastEvent)
	assert.True(t, stats.FirstEvent.Equal(base))
	assert.True(t, stats.LastEvent.Equal(base.Add(2*time.Hour)))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b`, escapeLike("a%b"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
