package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/progcdc/internal/program"
	"github.com/roach88/progcdc/internal/store"
)

// Source is the read side of the nesting system.
type Source interface {
	ListActiveProgramIDs(ctx context.Context) ([]program.ProgramID, error)
	// FetchAll returns the fetched states plus the ids that vanished
	// between listing and fetching.
	FetchAll(ctx context.Context, ids []program.ProgramID) ([]program.MaterializedState, []program.ProgramID, error)
	Classify(ctx context.Context, id program.ProgramID) (program.Status, error)
}

// LogStore persists one change log per program.
type LogStore interface {
	GetLog(ctx context.Context, id program.ProgramID) (program.ChangeLog, bool, error)
	CreateLog(ctx context.Context, log program.ChangeLog, at time.Time) (bool, error)
	PutLog(ctx context.Context, log program.ChangeLog, at time.Time) (bool, error)
	ListLogs(ctx context.Context) ([]program.ChangeLog, error)
}

// RunJournal records each snapshot pass.
type RunJournal interface {
	BeginRun(ctx context.Context, id string, startedAt time.Time) error
	FinishRun(ctx context.Context, id string, finishedAt time.Time, stats store.RunStats, runErr error) error
}

// Report summarizes one snapshot pass.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Programs   int       `json:"programs"` // active programs observed
	Touched    int       `json:"touched"`  // logs that received changes
	Changes    int       `json:"changes"`  // changes appended, before flattening
}

func (r Report) stats() store.RunStats {
	return store.RunStats{Programs: r.Programs, Touched: r.Touched, Changes: r.Changes}
}

// Tracker turns source observations into change logs.
type Tracker struct {
	src       Source
	logs      LogStore
	journal   RunJournal
	threshold time.Duration
	clock     Clock
	runIDs    RunIDGenerator
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRepostThreshold sets the widest delete/post gap coalesced as a re-post.
func WithRepostThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.threshold = d
		}
	}
}

// WithClock sets the clock used to timestamp runs and writes.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithRunIDs sets the run id generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(t *Tracker) { t.runIDs = g }
}

// WithJournal records every pass in j.
func WithJournal(j RunJournal) Option {
	return func(t *Tracker) { t.journal = j }
}

// New creates a Tracker. Collaborators are injected; the tracker holds no
// global state.
func New(src Source, logs LogStore, opts ...Option) *Tracker {
	t := &Tracker{
		src:       src,
		logs:      logs,
		threshold: program.DefaultRepostThreshold,
		clock:     SystemClock{},
		runIDs:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TakeSnapshot runs one pass over the source.
func (t *Tracker) TakeSnapshot(ctx context.Context) (rep Report, err error) {
	rep.RunID = t.runIDs.Generate()
	rep.StartedAt = t.clock.Now()

	if t.journal != nil {
		if err := t.journal.BeginRun(ctx, rep.RunID, rep.StartedAt); err != nil {
			return rep, err
		}
		defer func() {
			rep.FinishedAt = t.clock.Now()
			if ferr := t.journal.FinishRun(ctx, rep.RunID, rep.FinishedAt, rep.stats(), err); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}()
	}

	slog.Info("snapshot starting", "run", rep.RunID)

	if err := t.snapshot(ctx, &rep); err != nil {
		slog.Error("snapshot failed", "run", rep.RunID, "error", err)
		return rep, err
	}

	rep.FinishedAt = t.clock.Now()
	slog.Info("snapshot complete",
		"run", rep.RunID,
		"programs", rep.Programs,
		"touched", rep.Touched,
		"changes", rep.Changes,
	)
	return rep, nil
}

func (t *Tracker) snapshot(ctx context.Context, rep *Report) error {
	ids, err := t.src.ListActiveProgramIDs(ctx)
	if err != nil {
		return err
	}

	observed, vanished, err := t.src.FetchAll(ctx, ids)
	if err != nil {
		return err
	}
	if len(vanished) > 0 {
		// left the source after listing; swept below with the other vanished programs
		slog.Debug("programs vanished during fetch", "programs", vanished)
	}
	sort.Slice(observed, func(i, j int) bool { return observed[i].ProgramID < observed[j].ProgramID })
	rep.Programs = len(observed)

	active := make(map[program.ProgramID]bool, len(observed))
	for _, state := range observed {
		active[state.ProgramID] = true

		log, found, err := t.logs.GetLog(ctx, state.ProgramID)
		if err != nil {
			return err
		}

		if !found {
			if err := t.seed(ctx, rep, state); err != nil {
				return err
			}
			continue
		}

		appended, err := observe(&log, state)
		if err != nil {
			return err
		}
		if err := t.commit(ctx, rep, log, appended); err != nil {
			return err
		}
	}

	return t.sweepVanished(ctx, rep, active)
}

// seed creates the log of a program seen for the first time. Creation is
// create-if-absent: if another pass created the log first, this observation is
// left for the next pass to diff.
func (t *Tracker) seed(ctx context.Context, rep *Report, state program.MaterializedState) error {
	log := program.NewChangeLog(state.ProgramID, program.PostedFrom(state))
	created, err := t.logs.CreateLog(ctx, log, t.clock.Now())
	if err != nil {
		return err
	}
	if !created {
		slog.Warn("change log created concurrently", "program", state.ProgramID)
		return nil
	}

	rep.Touched++
	rep.Changes++
	slog.Debug("program seeded", "program", state.ProgramID)
	return nil
}

// observe appends the changes between the folded log and a fresh observation.
func observe(log *program.ChangeLog, state program.MaterializedState) (int, error) {
	current, err := program.CurrentState(*log)
	if err != nil {
		return 0, err
	}

	// deleted or completed earlier and active again
	if current.Status.Kind != program.StatusPosted {
		log.Append(program.PostedFrom(state))
		return 1, nil
	}

	changes := program.CalculateChanges(current, state)
	log.Append(changes...)
	return len(changes), nil
}

// sweepVanished classifies every posted program that is no longer active,
// including programs that were listed but gone by the time they were fetched.
func (t *Tracker) sweepVanished(ctx context.Context, rep *Report, active map[program.ProgramID]bool) error {
	stored, err := t.logs.ListLogs(ctx)
	if err != nil {
		return err
	}

	for _, log := range stored {
		if active[log.ProgramID] {
			continue
		}

		current, err := program.CurrentState(log)
		if err != nil {
			return err
		}
		if current.Status.Kind != program.StatusPosted {
			continue
		}

		status, err := t.src.Classify(ctx, log.ProgramID)
		if err != nil {
			return err
		}

		switch status.Kind {
		case program.StatusDeleted:
			log.Append(program.Deleted{Timestamp: status.At})
		case program.StatusUpdated:
			log.Append(program.Completed{Timestamp: status.At})
		default:
			// still posted per the archive; it may reappear next pass
			slog.Debug("vanished program still posted in archive", "program", log.ProgramID)
			continue
		}

		if err := t.commit(ctx, rep, log, 1); err != nil {
			return err
		}
	}
	return nil
}

// commit flattens and persists a log that received changes.
func (t *Tracker) commit(ctx context.Context, rep *Report, log program.ChangeLog, appended int) error {
	if appended == 0 {
		return nil
	}

	log.FlattenReposts(t.threshold)
	if _, err := t.logs.PutLog(ctx, log, t.clock.Now()); err != nil {
		return err
	}

	rep.Touched++
	rep.Changes += appended
	slog.Debug("program changed", "program", log.ProgramID, "changes", appended)
	return nil
}

// History returns the stored change log of a program.
func (t *Tracker) History(ctx context.Context, id program.ProgramID) (program.ChangeLog, error) {
	log, found, err := t.logs.GetLog(ctx, id)
	if err != nil {
		return program.ChangeLog{}, err
	}
	if !found {
		return program.ChangeLog{}, program.NewNotFoundError(id, "change log")
	}
	return log, nil
}

// State returns a program's state as of its latest recorded change.
func (t *Tracker) State(ctx context.Context, id program.ProgramID) (program.MaterializedState, error) {
	log, err := t.History(ctx, id)
	if err != nil {
		return program.MaterializedState{}, err
	}
	return program.CurrentState(log)
}

// Compact re-applies repost flattening to every stored log, for logs written
// under a narrower threshold. Returns the number of logs rewritten.
func (t *Tracker) Compact(ctx context.Context) (int, error) {
	stored, err := t.logs.ListLogs(ctx)
	if err != nil {
		return 0, err
	}

	rewritten := 0
	for _, log := range stored {
		before := log.Len()
		log.FlattenReposts(t.threshold)
		if log.Len() == before {
			continue
		}

		written, err := t.logs.PutLog(ctx, log, t.clock.Now())
		if err != nil {
			return rewritten, fmt.Errorf("compact program %s: %w", log.ProgramID, err)
		}
		if written {
			rewritten++
			slog.Debug("program log compacted", "program", log.ProgramID, "before", before, "after", log.Len())
		}
	}
	return rewritten, nil
}
