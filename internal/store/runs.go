package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run is the journal entry of one snapshot pass.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Programs   int        `json:"programs"`
	Touched    int        `json:"touched"`
	Changes    int        `json:"changes"`
	Error      string     `json:"error,omitempty"`
}

// RunStats are the counters recorded when a pass finishes.
type RunStats struct {
	Programs int
	Touched  int
	Changes  int
}

// BeginRun journals the start of a snapshot pass.
func (s *Store) BeginRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot_runs (id, started_at)
		VALUES (?, ?)
	`, id, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("begin run %s: %w", id, err)
	}
	return nil
}

// FinishRun records the outcome of a pass. A non-nil runErr marks it failed.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, stats RunStats, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE snapshot_runs
		SET finished_at = ?, programs = ?, touched = ?, changes = ?, error = ?
		WHERE id = ?
	`, finishedAt.UTC(), stats.Programs, stats.Touched, stats.Changes, errText, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, programs, touched, changes, error
		FROM snapshot_runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.Programs, &r.Touched, &r.Changes, &r.Error); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
