package harness

import (
	"github.com/roach88/progcdc/internal/program"
	"github.com/roach88/progcdc/internal/tracker"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Logs are the stored change logs after the final pass, by program id.
	Logs []program.ChangeLog `json:"logs"`

	// Reports has one entry per pass. Failed passes carry a partial report.
	Reports []tracker.Report `json:"reports"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Logs:    []program.ChangeLog{},
		Reports: []tracker.Report{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Log returns the change log of a program, if tracked.
func (r *Result) Log(id program.ProgramID) (program.ChangeLog, bool) {
	for _, l := range r.Logs {
		if l.ProgramID == id {
			return l, true
		}
	}
	return program.ChangeLog{}, false
}
