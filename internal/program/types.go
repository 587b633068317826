package program

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ProgramID is the numeric identity parsed from a source program name.
type ProgramID uint32

// ParseProgramID parses a source program name into a ProgramID.
// Non-numeric names are MalformedData.
func ParseProgramID(name string) (ProgramID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(name), 10, 32)
	if err != nil {
		return 0, NewMalformedError(0, "program name", name)
	}
	return ProgramID(n), nil
}

// String returns the source-side program name.
func (id ProgramID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Sheet is the raw stock assigned to a program.
// Name is the sheet's identity; every field participates in equality.
type Sheet struct {
	Name           string `json:"name"`
	Grade          string `json:"grade"`
	MaterialMaster string `json:"material_master"`
	HeatNumber     string `json:"heat_number"`
	PONumber       uint64 `json:"po_number"`
}

// SheetFieldKind names a mutable sheet attribute.
type SheetFieldKind string

const (
	FieldGrade          SheetFieldKind = "grade"
	FieldMaterialMaster SheetFieldKind = "material_master"
	FieldHeatNumber     SheetFieldKind = "heat_number"
	FieldPONumber       SheetFieldKind = "po_number"
)

// SheetField is a single field diff carrying the new value.
// Text holds string-valued fields, Number holds the po number.
type SheetField struct {
	Field  SheetFieldKind `json:"field"`
	Text   string         `json:"text,omitempty"`
	Number uint64         `json:"number,omitempty"`
}

func Grade(v string) SheetField          { return SheetField{Field: FieldGrade, Text: v} }
func MaterialMaster(v string) SheetField { return SheetField{Field: FieldMaterialMaster, Text: v} }
func HeatNumber(v string) SheetField     { return SheetField{Field: FieldHeatNumber, Text: v} }
func PONumber(v uint64) SheetField       { return SheetField{Field: FieldPONumber, Number: v} }

// Diff returns the field diffs needed to turn s into other, carrying other's
// values. Name is not compared; a different name is a different sheet.
func (s Sheet) Diff(other Sheet) []SheetField {
	var fields []SheetField
	if s.Grade != other.Grade {
		fields = append(fields, Grade(other.Grade))
	}
	if s.MaterialMaster != other.MaterialMaster {
		fields = append(fields, MaterialMaster(other.MaterialMaster))
	}
	if s.HeatNumber != other.HeatNumber {
		fields = append(fields, HeatNumber(other.HeatNumber))
	}
	if s.PONumber != other.PONumber {
		fields = append(fields, PONumber(other.PONumber))
	}
	return fields
}

// Apply writes each field diff into s.
func (s *Sheet) Apply(fields []SheetField) {
	for _, f := range fields {
		switch f.Field {
		case FieldGrade:
			s.Grade = f.Text
		case FieldMaterialMaster:
			s.MaterialMaster = f.Text
		case FieldHeatNumber:
			s.HeatNumber = f.Text
		case FieldPONumber:
			s.PONumber = f.Number
		}
	}
}

// Part is a cut piece under a program.
type Part struct {
	Name      string `json:"name"`
	WorkOrder string `json:"work_order"`
	Qty       uint32 `json:"qty"`
}

// Key returns the part's identity.
func (p Part) Key() PartKey {
	return PartKey{Name: p.Name, WorkOrder: p.WorkOrder}
}

// PartKey is the identity of a part: quantity is deliberately excluded.
type PartKey struct {
	Name      string
	WorkOrder string
}

// Parts maps part identity to in-process quantity.
type Parts map[PartKey]uint32

// NewParts builds a Parts set. A later duplicate identity replaces an earlier one.
func NewParts(parts ...Part) Parts {
	ps := make(Parts, len(parts))
	for _, p := range parts {
		ps.Put(p)
	}
	return ps
}

// Put inserts or replaces a part by identity.
func (ps Parts) Put(p Part) {
	ps[p.Key()] = p.Qty
}

// Remove deletes a part by identity. Absent parts are ignored.
func (ps Parts) Remove(p Part) {
	delete(ps, p.Key())
}

// Get looks up a part by identity.
func (ps Parts) Get(key PartKey) (Part, bool) {
	qty, ok := ps[key]
	if !ok {
		return Part{}, false
	}
	return Part{Name: key.Name, WorkOrder: key.WorkOrder, Qty: qty}, true
}

// Len returns the number of distinct parts.
func (ps Parts) Len() int { return len(ps) }

// Equal compares identity and quantity of every part.
func (ps Parts) Equal(other Parts) bool {
	if len(ps) != len(other) {
		return false
	}
	for k, qty := range ps {
		oq, ok := other[k]
		if !ok || oq != qty {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (ps Parts) Clone() Parts {
	out := make(Parts, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Sorted returns the parts ordered by name, then work order.
func (ps Parts) Sorted() []Part {
	out := make([]Part, 0, len(ps))
	for k, qty := range ps {
		out = append(out, Part{Name: k.Name, WorkOrder: k.WorkOrder, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].WorkOrder < out[j].WorkOrder
	})
	return out
}

// MarshalJSON encodes the set as a sorted array so output is deterministic.
func (ps Parts) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.Sorted())
}

// UnmarshalJSON decodes a part array.
func (ps *Parts) UnmarshalJSON(data []byte) error {
	var list []Part
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("unmarshal parts: %w", err)
	}
	*ps = NewParts(list...)
	return nil
}

// StatusKind is the lifecycle position of a program.
type StatusKind string

const (
	StatusPosted  StatusKind = "posted"
	StatusDeleted StatusKind = "deleted"
	StatusUpdated StatusKind = "updated"
)

// Status is a lifecycle position and the source time it was reached.
type Status struct {
	Kind StatusKind `json:"kind"`
	At   time.Time  `json:"at"`
}

func (s Status) String() string {
	return fmt.Sprintf("%s@%s", s.Kind, s.At.Format(time.RFC3339))
}

// MaterializedState is a program's state at one point in time, either freshly
// observed in the source or derived by folding a ChangeLog.
type MaterializedState struct {
	ProgramID ProgramID `json:"program_id"`
	Machine   string    `json:"machine"`
	Sheet     Sheet     `json:"sheet"`
	Parts     Parts     `json:"parts"`
	Status    Status    `json:"status"`
}

// Equal reports whether two states describe the same program content.
// Status is not compared; quantities are.
func (m MaterializedState) Equal(other MaterializedState) bool {
	return m.ProgramID == other.ProgramID &&
		m.Machine == other.Machine &&
		m.Sheet == other.Sheet &&
		m.Parts.Equal(other.Parts)
}
