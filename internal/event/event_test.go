package event

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 15, 123456789, time.UTC)

	formatted := FormatTimestamp(ts)
	parsed, err := ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

func TestFormatTimestampNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2026, 7, 1, 14, 0, 0, 0, loc)

	formatted := FormatTimestamp(local)
	assert.Equal(t, "2026-07-01T12:00:00.000000000Z", formatted)
}

// Stored timestamps are compared as text by SQL range filters, so their
// textual order must agree with chronological order.
func TestFormatTimestampSortsLexicographically(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 3, 14, 10, 0, 0, 500000000, time.UTC),
		time.Date(2026, 3, 14, 10, 0, 0, 520000000, time.UTC),
		time.Date(2026, 3, 14, 10, 0, 1, 0, time.UTC),
		time.Date(2026, 3, 14, 9, 59, 59, 999999999, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 1, time.UTC),
	}

	formatted := make([]string, len(times))
	for i, ts := range times {
		formatted[i] = FormatTimestamp(ts)
	}

	sort.Strings(formatted)

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, ts := range times {
		assert.Equal(t, FormatTimestamp(ts), formatted[i])
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
