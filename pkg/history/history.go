// Package history keeps a local log of capture outcomes so the
// verification tooling can correlate re-exported frames with the
// classifications the device reported for them.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS captures (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	capture_id      INTEGER NOT NULL,
	class           TEXT NOT NULL,
	confidence      INTEGER NOT NULL,
	inference_us    INTEGER NOT NULL,
	overflow        INTEGER NOT NULL DEFAULT 0,
	recorded_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_run ON captures(run_id, capture_id);
`

// Record is one logged capture outcome.
type Record struct {
	RunID      string
	CaptureID  int
	Class      string
	Confidence int
	TimeUS     uint32
	Overflow   bool
	RecordedAt time.Time
}

// Store is a sqlite-backed capture log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the capture log at path, applying the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add appends one capture outcome.
func (s *Store) Add(ctx context.Context, r Record) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO captures (run_id, capture_id, class, confidence, inference_us, overflow, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CaptureID, r.Class, r.Confidence, r.TimeUS, r.Overflow, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("history: insert capture %d: %w", r.CaptureID, err)
	}
	return nil
}

// Recent returns up to n most recent outcomes, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, capture_id, class, confidence, inference_us, overflow, recorded_at
		 FROM captures ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.RunID, &r.CaptureID, &r.Class, &r.Confidence, &r.TimeUS, &r.Overflow, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
