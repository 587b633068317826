package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/progcdc/internal/program"
)

// ArchiveCodes maps ProgArchive transaction codes to lifecycle positions.
type ArchiveCodes struct {
	Posted  string `json:"posted"`
	Deleted string `json:"deleted"`
	Updated string `json:"updated"`
}

// DefaultArchiveCodes returns the stock code set.
func DefaultArchiveCodes() ArchiveCodes {
	return ArchiveCodes{Posted: "A", Deleted: "B", Updated: "C"}
}

// Resolve maps a raw transaction code to a status kind.
func (c ArchiveCodes) Resolve(code string) (program.StatusKind, bool) {
	switch strings.TrimSpace(code) {
	case c.Posted:
		return program.StatusPosted, true
	case c.Deleted:
		return program.StatusDeleted, true
	case c.Updated:
		return program.StatusUpdated, true
	default:
		return "", false
	}
}

// Classify determines what happened to a program that is no longer active
// by reading its most recent archival transaction.
//
// Returns NotFound when the program has no archive row and
// UnexpectedClassificationCode when the code is not in the configured set.
func (f *Fetcher) Classify(ctx context.Context, id program.ProgramID) (program.Status, error) {
	// Ordered rather than TOP/LIMIT so the query is portable across drivers.
	rows, err := f.db.QueryContext(ctx, `
		SELECT ArcDateTime, TransType
		FROM ProgArchive
		WHERE ProgramName = @p1
		ORDER BY ArcDateTime DESC
	`, id.String())
	if err != nil {
		return program.Status{}, fmt.Errorf("classify program %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return program.Status{}, fmt.Errorf("classify program %s: %w", id, err)
		}
		return program.Status{}, program.NewNotFoundError(id, "archive transaction")
	}

	var at time.Time
	var code string
	if err := rows.Scan(&at, &code); err != nil {
		return program.Status{}, fmt.Errorf("classify program %s: %w", id, err)
	}

	kind, ok := f.codes.Resolve(normalize(code))
	if !ok {
		return program.Status{}, program.NewClassificationError(id, code)
	}
	return program.Status{Kind: kind, At: at.UTC()}, nil
}
