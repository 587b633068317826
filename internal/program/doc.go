// Package program models the observed and historical state of nesting
// programs and the semantic changes between them.
//
// A program's history is a ChangeLog: an append-only sequence of Change
// values whose first element is always Posted. Current state is never stored;
// it is derived by folding the log with CurrentState.
//
// # Change Derivation
//
// CalculateChanges compares a folded state with a freshly observed snapshot
// and emits the minimal ordered set of changes:
//
//	ChangeMachine → SwapSheet | UpdatedSheetData → ChangePartQty | DeletePart → AddPart
//
// # Repost Coalescing
//
// The source system emits one logical re-post as a Deleted and a Posted
// transaction a few seconds apart, in either order. Flatten replaces each such
// adjacent pair with a single RePosted marker. Pairs are consumed whole, so a
// run of N alternating entries collapses into N/2 markers and a second pass is
// a no-op.
//
// # Part Identity
//
// Parts are keyed by (name, work order). Quantity is the mapped value, not
// part of the key, and Parts.Equal compares it explicitly.
package program
