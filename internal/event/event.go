package event

import (
	"time"
)

// TimestampLayout is the stored form of receipt timestamps: UTC ISO-8601
// with a fixed-width nanosecond fraction, so lexicographic order equals
// chronological order in SQL comparisons.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one observed broker message. Records are immutable once
// appended; ID is assigned by the store and strictly increases in
// insertion order, doubling as the chronological tiebreak.
type Record struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Sender    string    `json:"sender,omitempty"`
	Payload   string    `json:"payload"`
	Binary    bool      `json:"binary,omitempty"`
	QoS       byte      `json:"qos"`
	Retained  bool      `json:"retained"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
