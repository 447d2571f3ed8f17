// Package testutil builds event log fixtures for tests.
package testutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    variants TEXT NOT NULL,
    weights TEXT,
    conversion_goal TEXT,
    state TEXT NOT NULL DEFAULT 'running',
    winner_variant INTEGER,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    test_name TEXT NOT NULL,
    variant INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (test_name) REFERENCES tests(name)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_events_dedup ON events(test_name, visitor_id, event_type);
`

// EventLog is a writable fixture database in a temp dir.
type EventLog struct {
	t    *testing.T
	Path string
	db   *sql.DB
}

// NewEventLog creates an empty event log. Uses t.TempDir() for automatic
// cleanup on test completion.
func NewEventLog(t *testing.T) *EventLog {
	t.Helper()

	path := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture db: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return &EventLog{t: t, Path: path, db: db}
}

// AddTest inserts a running test.
func (l *EventLog) AddTest(name string, variants []string, createdAt time.Time) {
	l.t.Helper()

	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		l.t.Fatalf("failed to marshal variants: %v", err)
	}
	_, err = l.db.Exec(
		`INSERT INTO tests (name, variants, conversion_goal, state, created_at, updated_at) VALUES (?, ?, '', 'running', ?, ?)`,
		name, string(variantsJSON), createdAt.Unix(), createdAt.Unix(),
	)
	if err != nil {
		l.t.Fatalf("failed to insert test: %v", err)
	}
}

// AddVisitors records views for n visitors on a variant, the first
// conversions of whom also convert. Visitor IDs are prefixed to stay unique.
func (l *EventLog) AddVisitors(test string, variant, n, conversions int, at time.Time) {
	l.t.Helper()

	for i := 0; i < n; i++ {
		vid := fmt.Sprintf("%s-%d-%d-%d", test, variant, at.Unix(), i)
		l.AddEvent(test, variant, "view", vid, at)
		if i < conversions {
			l.AddEvent(test, variant, "convert", vid, at.Add(time.Minute))
		}
	}
}

// AddEvent records a single event.
func (l *EventLog) AddEvent(test string, variant int, eventType, visitorID string, at time.Time) {
	_, err := l.db.Exec(
		`INSERT OR IGNORE INTO events (test_name, variant, event_type, visitor_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		test, variant, eventType, visitorID, at.Unix(),
	)
	if err != nil {
		l.t.Fatalf("failed to insert event: %v", err)
	}
}

// Binary returns a 0/1 sequence with the given number of ones, in order.
func Binary(n, ones int) []float64 {
	out := make([]float64, n)
	for i := 0; i < ones && i < n; i++ {
		out[i] = 1
	}
	return out
}
