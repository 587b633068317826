package program

import (
	"time"
)

// ChangeKind names a Change variant. It is also the wire tag in JSON.
type ChangeKind string

const (
	KindPosted           ChangeKind = "posted"
	KindDeleted          ChangeKind = "deleted"
	KindCompleted        ChangeKind = "completed"
	KindRePosted         ChangeKind = "reposted"
	KindChangeMachine    ChangeKind = "change_machine"
	KindSwapSheet        ChangeKind = "swap_sheet"
	KindUpdatedSheetData ChangeKind = "updated_sheet_data"
	KindAddPart          ChangeKind = "add_part"
	KindChangePartQty    ChangeKind = "change_part_qty"
	KindDeletePart       ChangeKind = "delete_part"
)

// Change is one semantic event in a program's history.
//
// The interface is sealed: every variant must say how it folds into a state
// and how it is encoded, so a new variant does not compile until both exist.
type Change interface {
	Kind() ChangeKind
	apply(*MaterializedState)
	envelope() changeEnvelope
}

// Posted makes a program live with the given content. The first change of
// every log is Posted.
type Posted struct {
	Timestamp time.Time
	Machine   string
	Sheet     Sheet
	Parts     Parts
}

// Deleted records the program being removed from the source.
type Deleted struct {
	Timestamp time.Time
}

// Completed records the program being cut and archived.
type Completed struct {
	Timestamp time.Time
}

// RePosted marks a coalesced delete/post pair. It does not affect state.
type RePosted struct{}

// ChangeMachine moves the program to another machine.
type ChangeMachine struct {
	Machine string
}

// SwapSheet replaces the stock with a different sheet.
type SwapSheet struct {
	Sheet Sheet
}

// UpdatedSheetData edits fields of the current sheet in place.
type UpdatedSheetData struct {
	Fields []SheetField
}

// AddPart adds a part to the program.
type AddPart struct {
	Part Part
}

// ChangePartQty sets a part's quantity; Part carries the new quantity.
type ChangePartQty struct {
	Part Part
}

// DeletePart removes a part from the program.
type DeletePart struct {
	Part Part
}

// PostedFrom builds the Posted change describing an observed state.
func PostedFrom(s MaterializedState) Posted {
	return Posted{
		Timestamp: s.Status.At,
		Machine:   s.Machine,
		Sheet:     s.Sheet,
		Parts:     s.Parts.Clone(),
	}
}

func (Posted) Kind() ChangeKind           { return KindPosted }
func (Deleted) Kind() ChangeKind          { return KindDeleted }
func (Completed) Kind() ChangeKind        { return KindCompleted }
func (RePosted) Kind() ChangeKind         { return KindRePosted }
func (ChangeMachine) Kind() ChangeKind    { return KindChangeMachine }
func (SwapSheet) Kind() ChangeKind        { return KindSwapSheet }
func (UpdatedSheetData) Kind() ChangeKind { return KindUpdatedSheetData }
func (AddPart) Kind() ChangeKind          { return KindAddPart }
func (ChangePartQty) Kind() ChangeKind    { return KindChangePartQty }
func (DeletePart) Kind() ChangeKind       { return KindDeletePart }

func (c Posted) apply(s *MaterializedState) {
	s.Machine = c.Machine
	s.Sheet = c.Sheet
	s.Parts = c.Parts.Clone()
	s.Status = Status{Kind: StatusPosted, At: c.Timestamp}
}

func (c Deleted) apply(s *MaterializedState) {
	s.Status = Status{Kind: StatusDeleted, At: c.Timestamp}
}

func (c Completed) apply(s *MaterializedState) {
	s.Status = Status{Kind: StatusUpdated, At: c.Timestamp}
}

func (RePosted) apply(*MaterializedState) {}

func (c ChangeMachine) apply(s *MaterializedState) { s.Machine = c.Machine }

func (c SwapSheet) apply(s *MaterializedState) { s.Sheet = c.Sheet }

func (c UpdatedSheetData) apply(s *MaterializedState) { s.Sheet.Apply(c.Fields) }

func (c AddPart) apply(s *MaterializedState) { s.Parts.Put(c.Part) }

func (c ChangePartQty) apply(s *MaterializedState) { s.Parts.Put(c.Part) }

func (c DeletePart) apply(s *MaterializedState) { s.Parts.Remove(c.Part) }
