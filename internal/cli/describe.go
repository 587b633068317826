package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/progcdc/internal/program"
)

// describeChange renders a change as one human-readable line.
func describeChange(c program.Change) string {
	switch c := c.(type) {
	case program.Posted:
		return fmt.Sprintf("posted %s on %s, sheet %s, %d part(s)",
			c.Timestamp.Format(time.RFC3339), c.Machine, c.Sheet.Name, c.Parts.Len())
	case program.Deleted:
		return fmt.Sprintf("deleted %s", c.Timestamp.Format(time.RFC3339))
	case program.Completed:
		return fmt.Sprintf("completed %s", c.Timestamp.Format(time.RFC3339))
	case program.RePosted:
		return "reposted"
	case program.ChangeMachine:
		return fmt.Sprintf("machine -> %s", c.Machine)
	case program.SwapSheet:
		return fmt.Sprintf("sheet -> %s", describeSheet(c.Sheet))
	case program.UpdatedSheetData:
		fields := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			fields[i] = describeField(f)
		}
		return "sheet data " + strings.Join(fields, ", ")
	case program.AddPart:
		return fmt.Sprintf("add part %s", describePart(c.Part))
	case program.ChangePartQty:
		return fmt.Sprintf("part qty %s", describePart(c.Part))
	case program.DeletePart:
		return fmt.Sprintf("delete part %s/%s", c.Part.Name, c.Part.WorkOrder)
	default:
		return string(c.Kind())
	}
}

func describeSheet(s program.Sheet) string {
	return fmt.Sprintf("%s (grade %s, material %s, heat %s, po %d)",
		s.Name, s.Grade, s.MaterialMaster, s.HeatNumber, s.PONumber)
}

func describeField(f program.SheetField) string {
	if f.Field == program.FieldPONumber {
		return fmt.Sprintf("%s=%d", f.Field, f.Number)
	}
	return fmt.Sprintf("%s=%s", f.Field, f.Text)
}

func describePart(p program.Part) string {
	return fmt.Sprintf("%s/%s x%d", p.Name, p.WorkOrder, p.Qty)
}

func writeState(w io.Writer, s program.MaterializedState) {
	fmt.Fprintf(w, "Program %s\n", s.ProgramID)
	fmt.Fprintf(w, "  Status:  %s\n", s.Status)
	fmt.Fprintf(w, "  Machine: %s\n", s.Machine)
	fmt.Fprintf(w, "  Sheet:   %s\n", describeSheet(s.Sheet))
	fmt.Fprintf(w, "  Parts:   %d\n", s.Parts.Len())
	for _, p := range s.Parts.Sorted() {
		fmt.Fprintf(w, "    %s\n", describePart(p))
	}
}
