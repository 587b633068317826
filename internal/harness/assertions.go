package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/progcdc/internal/program"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Program  program.ProgramID
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Program != 0 {
		fmt.Fprintf(&buf, " (program %d)", e.Program)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s\n", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertLogKinds:
		return assertLogKinds(result, a)
	case AssertFinalStatus:
		return assertFinalStatus(result, a)
	case AssertFinalParts:
		return assertFinalParts(result, a)
	case AssertNoLog:
		return assertNoLog(result, a)
	case AssertReport:
		return assertReport(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertLogKinds(result *Result, a Assertion) error {
	log, ok := result.Log(a.Program)
	if !ok {
		return &AssertionError{Type: a.Type, Program: a.Program, Expected: fmt.Sprint(a.Kinds), Actual: "no change log"}
	}

	actual := make([]program.ChangeKind, 0, log.Len())
	for _, c := range log.Changes {
		actual = append(actual, c.Kind())
	}
	if !reflect.DeepEqual(actual, a.Kinds) {
		return &AssertionError{Type: a.Type, Program: a.Program, Expected: fmt.Sprint(a.Kinds), Actual: fmt.Sprint(actual)}
	}
	return nil
}

func assertFinalStatus(result *Result, a Assertion) error {
	state, err := foldFor(result, a)
	if err != nil {
		return err
	}
	if state.Status.Kind != a.Status {
		return &AssertionError{Type: a.Type, Program: a.Program, Expected: string(a.Status), Actual: string(state.Status.Kind)}
	}
	return nil
}

func assertFinalParts(result *Result, a Assertion) error {
	state, err := foldFor(result, a)
	if err != nil {
		return err
	}

	expected := program.Parts{}
	for _, p := range a.Parts {
		expected.Put(program.Part{Name: p.Name, WorkOrder: p.WorkOrder, Qty: uint32(p.Qty)})
	}
	if !expected.Equal(state.Parts) {
		return &AssertionError{
			Type:     a.Type,
			Program:  a.Program,
			Expected: formatParts(expected),
			Actual:   formatParts(state.Parts),
		}
	}
	return nil
}

func assertNoLog(result *Result, a Assertion) error {
	if log, ok := result.Log(a.Program); ok {
		return &AssertionError{Type: a.Type, Program: a.Program, Expected: "no change log", Actual: fmt.Sprintf("%d changes", log.Len())}
	}
	return nil
}

func assertReport(result *Result, a Assertion) error {
	if a.Pass >= len(result.Reports) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("report for pass %d", a.Pass), Actual: fmt.Sprintf("%d reports", len(result.Reports))}
	}
	rep := result.Reports[a.Pass]

	if a.Touched != nil && *a.Touched != rep.Touched {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("pass %d touched=%d", a.Pass, *a.Touched), Actual: fmt.Sprintf("touched=%d", rep.Touched)}
	}
	if a.Changes != nil && *a.Changes != rep.Changes {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("pass %d changes=%d", a.Pass, *a.Changes), Actual: fmt.Sprintf("changes=%d", rep.Changes)}
	}
	return nil
}

func foldFor(result *Result, a Assertion) (program.MaterializedState, error) {
	log, ok := result.Log(a.Program)
	if !ok {
		return program.MaterializedState{}, &AssertionError{Type: a.Type, Program: a.Program, Expected: "a change log", Actual: "no change log"}
	}
	return program.CurrentState(log)
}

func formatParts(ps program.Parts) string {
	parts := ps.Sorted()
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = fmt.Sprintf("%s/%s x%d", p.Name, p.WorkOrder, p.Qty)
	}
	return "[" + strings.Join(out, ", ") + "]"
}
