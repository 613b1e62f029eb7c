package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"mqttlog/internal/config"
	"mqttlog/internal/event"
	apperrors "mqttlog/pkg/errors"
)

// SQLiteStore is the durable Event Store. WAL journaling lets the query
// side read a consistent snapshot while the single ingest writer is
// appending.
type SQLiteStore struct {
	db *sql.DB
}

func Open(ctx context.Context, cfg config.DatabaseConfig) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeoutMillis)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.RunMigrations {
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle for health checks.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, rec *event.Record) (int64, error) {
	query := `
		INSERT INTO mqtt_events (timestamp, topic, sender, payload, qos, retained)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	sender := sql.NullString{String: rec.Sender, Valid: rec.Sender != ""}
	res, err := s.db.ExecContext(ctx, query,
		event.FormatTimestamp(rec.Timestamp), rec.Topic, sender,
		rec.Payload, int(rec.QoS), boolToInt(rec.Retained),
	)
	if err != nil {
		return 0, apperrors.ErrStoreWrite.WithCause(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.ErrStoreWrite.WithCause(err)
	}

	rec.ID = id
	return id, nil
}

func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]event.Record, error) {
	if f.Limit <= 0 {
		return nil, apperrors.ErrInvalidArgument.WithDetail("message",
			fmt.Sprintf("limit must be a positive integer, got %d", f.Limit))
	}

	var where []string
	var args []interface{}

	if !f.Since.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, event.FormatTimestamp(f.Since))
	}

	// Exact patterns become an equality lookup; wildcard patterns narrow
	// the scan by literal prefix and are matched row by row below.
	rowFilter := false
	if f.Pattern != nil {
		if exact, ok := f.Pattern.Exact(); ok {
			where = append(where, "topic = ?")
			args = append(args, exact)
		} else {
			rowFilter = true
			if prefix := f.Pattern.LiteralPrefix(); prefix != "" {
				where = append(where, `topic LIKE ? ESCAPE '\'`)
				args = append(args, escapeLike(prefix)+"%")
			}
		}
	}

	query := "SELECT id, timestamp, topic, sender, payload, qos, retained FROM mqtt_events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if !rowFilter {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []event.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if rowFilter && !f.Pattern.Matches(rec.Topic) {
			continue
		}

		records = append(records, rec)
		if len(records) >= f.Limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) ListTopics(ctx context.Context) ([]TopicCount, error) {
	query := `
		SELECT topic, COUNT(*) AS count
		FROM mqtt_events
		GROUP BY topic
		ORDER BY count DESC, topic ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []TopicCount
	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan topic count: %w", err)
		}
		topics = append(topics, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}

	return topics, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT topic), COALESCE(SUM(retained), 0),
		       MIN(timestamp), MAX(timestamp)
		FROM mqtt_events
	`

	var stats Stats
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalEvents, &stats.DistinctTopics, &stats.RetainedEvents,
		&first, &last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	if first.Valid {
		t, err := event.ParseTimestamp(first.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse first event timestamp: %w", err)
		}
		stats.FirstEvent = &t
	}
	if last.Valid {
		t, err := event.ParseTimestamp(last.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last event timestamp: %w", err)
		}
		stats.LastEvent = &t
	}

	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (event.Record, error) {
	var rec event.Record
	var ts string
	var sender sql.NullString
	var qos, retained int

	if err := row.Scan(&rec.ID, &ts, &rec.Topic, &sender, &rec.Payload, &qos, &retained); err != nil {
		return event.Record{}, err
	}

	t, err := event.ParseTimestamp(ts)
	if err != nil {
		return event.Record{}, err
	}

	rec.Timestamp = t
	rec.Sender = sender.String
	rec.Binary = event.IsBinaryPayload(rec.Payload)
	rec.QoS = byte(qos)
	rec.Retained = retained != 0
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// escapeLike escapes the SQL LIKE metacharacters in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
