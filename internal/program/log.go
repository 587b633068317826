package program

import "time"

// ChangeLog is the append-only history of one program.
//
// INVARIANT: Changes[0] is Posted. A log that violates this is corrupt and
// cannot be folded.
type ChangeLog struct {
	ProgramID ProgramID
	Changes   []Change
}

// NewChangeLog starts a history from its first posting.
func NewChangeLog(id ProgramID, seed Posted) ChangeLog {
	return ChangeLog{ProgramID: id, Changes: []Change{seed}}
}

// Append adds changes to the end of the log.
func (l *ChangeLog) Append(changes ...Change) {
	l.Changes = append(l.Changes, changes...)
}

// Len returns the number of changes.
func (l ChangeLog) Len() int { return len(l.Changes) }

// Validate checks the Posted-first invariant.
func (l ChangeLog) Validate() error {
	if len(l.Changes) == 0 {
		return NewPreconditionError(l.ProgramID, "change log is empty")
	}
	if _, ok := l.Changes[0].(Posted); !ok {
		return NewPreconditionError(l.ProgramID, "change log must start with posted, got "+string(l.Changes[0].Kind()))
	}
	return nil
}

// CurrentState reconstructs the program's state by folding the log.
// Fails with PreconditionViolation rather than guessing when the log is not
// seeded by Posted.
func CurrentState(l ChangeLog) (MaterializedState, error) {
	if err := l.Validate(); err != nil {
		return MaterializedState{}, err
	}

	state := MaterializedState{ProgramID: l.ProgramID, Parts: Parts{}}
	for _, c := range l.Changes {
		c.apply(&state)
	}
	return state, nil
}

// FlattenReposts coalesces repost pairs in place, leaving the seed untouched
// so the log stays foldable.
func (l *ChangeLog) FlattenReposts(threshold time.Duration) {
	if len(l.Changes) < 3 {
		return
	}
	rest := Flatten(l.Changes[1:], threshold)
	l.Changes = append(l.Changes[:1:1], rest...)
}
