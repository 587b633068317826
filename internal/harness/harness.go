package harness

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/progcdc/internal/source"
	"github.com/roach88/progcdc/internal/store"
	"github.com/roach88/progcdc/internal/testutil"
	"github.com/roach88/progcdc/internal/tracker"
)

//go:embed sourcedb.sql
var sourceSchema string

// clockEpoch is the first reading of the harness clock. It only affects run
// journal timestamps, never change logs.
var clockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness is the test execution engine.
// It runs scenarios against a scratch source database and tracking store.
type Harness struct {
	source  *sql.DB
	store   *store.Store
	tracker *tracker.Tracker
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in fresh databases under a temporary directory.
//
// Execution flow:
//  1. Create source and tracking databases
//  2. For each pass: load the pass into the source tables, take a snapshot
//  3. Collect the stored change logs
//  4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "progcdc-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h, err := newHarness(dir, scenario)
	if err != nil {
		return nil, err
	}
	defer h.close()

	ctx := context.Background()
	result := NewResult()

	for i, pass := range scenario.Passes {
		if err := h.loadPass(ctx, pass); err != nil {
			return nil, fmt.Errorf("pass %d: failed to load source: %w", i, err)
		}

		rep, err := h.tracker.TakeSnapshot(ctx)
		result.Reports = append(result.Reports, rep)

		switch {
		case pass.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("pass %d: unexpected error: %v", i, err))
		case pass.ExpectError != "" && err == nil:
			result.AddError(fmt.Sprintf("pass %d: expected error containing %q, got success", i, pass.ExpectError))
		case pass.ExpectError != "" && !strings.Contains(err.Error(), pass.ExpectError):
			result.AddError(fmt.Sprintf("pass %d: expected error containing %q, got %v", i, pass.ExpectError, err))
		}
	}

	logs, err := h.store.ListLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list change logs: %w", err)
	}
	result.Logs = logs

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(dir string, scenario *Scenario) (*Harness, error) {
	threshold, err := scenario.threshold()
	if err != nil {
		return nil, fmt.Errorf("invalid repost threshold: %w", err)
	}

	srcDB, err := sql.Open("sqlite3", filepath.Join(dir, "source.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	if _, err := srcDB.Exec(sourceSchema); err != nil {
		srcDB.Close()
		return nil, fmt.Errorf("failed to create source tables: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, "tracking.db"))
	if err != nil {
		srcDB.Close()
		return nil, fmt.Errorf("failed to open tracking store: %w", err)
	}

	codes := source.DefaultArchiveCodes()
	if scenario.ArchiveCodes != nil {
		codes = *scenario.ArchiveCodes
	}

	fetcher := source.New(srcDB, source.WithPoolSize(4), source.WithArchiveCodes(codes))
	tr := tracker.New(fetcher, st,
		tracker.WithRepostThreshold(threshold),
		tracker.WithClock(testutil.NewStepClock(clockEpoch, time.Second)),
		tracker.WithRunIDs(testutil.NewSequentialRunIDs("pass")),
		tracker.WithJournal(st),
	)

	return &Harness{source: srcDB, store: st, tracker: tr}, nil
}

func (h *Harness) close() {
	h.store.Close()
	h.source.Close()
}

// loadPass replaces the active-program tables with the pass content and
// appends its archive rows.
func (h *Harness) loadPass(ctx context.Context, pass Pass) error {
	tx, err := h.source.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"Program", "Stock", "PIP"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, row := range pass.Programs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO Stock (SheetName, Material, PrimeCode, HeatNumber, BinNumber)
			VALUES (?, ?, ?, ?, ?)
		`, row.Sheet.Name, row.Sheet.Grade, row.Sheet.Material, row.Sheet.Heat, row.Sheet.PO); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO Program (ProgramName, MachineName, PostDateTime, SheetName)
			VALUES (?, ?, ?, ?)
		`, row.Name, row.Machine, row.PostedAt.UTC(), row.Sheet.Name); err != nil {
			return err
		}

		for _, part := range row.Parts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO PIP (ProgramName, PartName, WONumber, QtyInProcess)
				VALUES (?, ?, ?, ?)
			`, row.Name, part.Name, part.WorkOrder, part.Qty); err != nil {
				return err
			}
		}
	}

	for _, row := range pass.Archive {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ProgArchive (ProgramName, ArcDateTime, TransType)
			VALUES (?, ?, ?)
		`, row.Program, row.At.UTC(), row.Code); err != nil {
			return err
		}
	}

	return tx.Commit()
}
