// Package history records observed WARP status transitions in a local
// sqlite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/warppulse/warppulse/common"
	_ "modernc.org/sqlite"
)

// Event is one recorded status transition.
type Event = common.StatusEvent

const schema = `
CREATE TABLE IF NOT EXISTS status_events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	status      TEXT NOT NULL,
	connected   INTEGER NOT NULL,
	mode        TEXT NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_status_events_recorded_at ON status_events(recorded_at);
`

// Store persists status events.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ common.EventRecorder = (*Store)(nil)

// DefaultPath returns the history database path in the data directory.
func DefaultPath() (string, error) {
	dir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.HistoryFileName), nil
}

// Open opens (creating if needed) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrHistoryUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps sqlite from reporting SQLITE_BUSY under concurrent Record calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", common.ErrHistoryUnavailable, err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores ev with a fresh ID. A zero RecordedAt is set to now.
func (s *Store) Record(ctx context.Context, ev Event) (Event, error) {
	ev.ID = uuid.New().String()
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_events (id, status, connected, mode, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.Status, ev.Connected, ev.Mode, ev.RecordedAt.UnixMilli(),
	)
	if err != nil {
		return Event{}, fmt.Errorf("failed to record event: %w", err)
	}
	return ev, nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, connected, mode, recorded_at FROM status_events
		 ORDER BY recorded_at DESC, seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var recordedAt int64
		if err := rows.Scan(&ev.ID, &ev.Status, &ev.Connected, &ev.Mode, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.RecordedAt = time.UnixMilli(recordedAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Prune deletes all but the newest keep events and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM status_events WHERE seq NOT IN (
			SELECT seq FROM status_events ORDER BY recorded_at DESC, seq DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM status_events`).Scan(&n)
	return n, err
}
