// Package tracker runs snapshot passes: it observes every active program in
// the source, compares each against the state folded from its stored change
// log, and appends whatever changed.
//
// A pass is all-or-nothing at the fetch stage. Once fetching succeeds, logs
// are persisted program by program; the first failure aborts the pass and
// leaves already-written logs in place. Re-running a pass is safe because an
// unchanged program produces no changes.
//
// Two passes must not run against the same tracking store at once: the
// per-program read-modify-write is not guarded.
package tracker
