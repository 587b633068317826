package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Select when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Record is one stored document.
type Record struct {
	Collection string
	ID         string
	Content    string
	Digest     string
	Revision   int64
	UpdatedAt  time.Time
}

// Create inserts a record only if (collection, id) is free.
// Returns inserted=false, without error, when a record already exists.
func (s *Store) Create(ctx context.Context, rec Record) (inserted bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO records
		(collection, id, content, digest, revision, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`,
		rec.Collection,
		rec.ID,
		rec.Content,
		rec.Digest,
		updatedAt(rec),
	)
	if err != nil {
		return false, fmt.Errorf("create record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create record: rows affected: %w", err)
	}
	return n > 0, nil
}

// Upsert overwrites the full record for (collection, id), creating it if
// needed. When the stored digest already matches, nothing is written and
// written=false is returned.
func (s *Store) Upsert(ctx context.Context, rec Record) (written bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("upsert record: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var current string
	err = tx.QueryRowContext(ctx, `
		SELECT digest FROM records
		WHERE collection = ? AND id = ?
	`, rec.Collection, rec.ID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("upsert record: select digest: %w", err)
	case current == rec.Digest:
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records
		(collection, id, content, digest, revision, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			content    = excluded.content,
			digest     = excluded.digest,
			revision   = records.revision + 1,
			updated_at = excluded.updated_at
	`,
		rec.Collection,
		rec.ID,
		rec.Content,
		rec.Digest,
		updatedAt(rec),
	)
	if err != nil {
		return false, fmt.Errorf("upsert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("upsert record: commit: %w", err)
	}
	return true, nil
}

// Select retrieves a single record. Returns ErrNotFound if absent.
func (s *Store) Select(ctx context.Context, collection, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT collection, id, content, digest, revision, updated_at
		FROM records
		WHERE collection = ? AND id = ?
	`, collection, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

// Scan returns every record in a collection ordered by id.
// Returns an empty slice (not nil) if the collection is empty.
func (s *Store) Scan(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, id, content, digest, revision, updated_at
		FROM records
		WHERE collection = ?
		ORDER BY id COLLATE BINARY ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan records: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.Collection, &rec.ID, &rec.Content, &rec.Digest, &rec.Revision, &rec.UpdatedAt)
	return rec, err
}

func updatedAt(rec Record) time.Time {
	if rec.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return rec.UpdatedAt.UTC()
}
