package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/progcdc/internal/program"
)

// GetLog returns the stored change log for a program.
// found=false (with a nil error) means the program has never been tracked.
func (s *Store) GetLog(ctx context.Context, id program.ProgramID) (log program.ChangeLog, found bool, err error) {
	rec, err := s.Select(ctx, s.collection, id.String())
	if errors.Is(err, ErrNotFound) {
		return program.ChangeLog{}, false, nil
	}
	if err != nil {
		return program.ChangeLog{}, false, fmt.Errorf("get log %s: %w", id, err)
	}

	log, err = decodeLog(rec)
	if err != nil {
		return program.ChangeLog{}, false, err
	}
	return log, true, nil
}

// PutLog overwrites the stored log for log.ProgramID with the full log.
// written=false means the stored log was already identical.
func (s *Store) PutLog(ctx context.Context, log program.ChangeLog, at time.Time) (written bool, err error) {
	rec, err := s.logRecord(log, at)
	if err != nil {
		return false, err
	}

	written, err = s.Upsert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("put log %s: %w", log.ProgramID, err)
	}
	return written, nil
}

// CreateLog stores the first log of a program.
// created=false means a log already exists and was left untouched.
func (s *Store) CreateLog(ctx context.Context, log program.ChangeLog, at time.Time) (created bool, err error) {
	rec, err := s.logRecord(log, at)
	if err != nil {
		return false, err
	}

	created, err = s.Create(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("create log %s: %w", log.ProgramID, err)
	}
	return created, nil
}

func (s *Store) logRecord(log program.ChangeLog, at time.Time) (Record, error) {
	if err := log.Validate(); err != nil {
		return Record{}, err
	}

	data, err := json.Marshal(log)
	if err != nil {
		return Record{}, fmt.Errorf("encode log %s: %w", log.ProgramID, err)
	}
	digest, err := program.Digest(log)
	if err != nil {
		return Record{}, fmt.Errorf("digest log %s: %w", log.ProgramID, err)
	}

	return Record{
		Collection: s.collection,
		ID:         log.ProgramID.String(),
		Content:    string(data),
		Digest:     digest,
		UpdatedAt:  at,
	}, nil
}

// ListLogs returns every tracked change log ordered by program id.
func (s *Store) ListLogs(ctx context.Context) ([]program.ChangeLog, error) {
	records, err := s.Scan(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	logs := make([]program.ChangeLog, 0, len(records))
	for _, rec := range records {
		log, err := decodeLog(rec)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	// ids are stored as text; restore numeric order
	sort.Slice(logs, func(i, j int) bool { return logs[i].ProgramID < logs[j].ProgramID })
	return logs, nil
}

// LogDigest returns the stored digest for a program's log.
func (s *Store) LogDigest(ctx context.Context, id program.ProgramID) (string, error) {
	rec, err := s.Select(ctx, s.collection, id.String())
	if err != nil {
		return "", fmt.Errorf("log digest %s: %w", id, err)
	}
	return rec.Digest, nil
}

func decodeLog(rec Record) (program.ChangeLog, error) {
	var log program.ChangeLog
	if err := json.Unmarshal([]byte(rec.Content), &log); err != nil {
		return program.ChangeLog{}, fmt.Errorf("decode log %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return log, nil
}
