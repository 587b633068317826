package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/progcdc/internal/program"
)

func TestDescribeChange(t *testing.T) {
	x1a := program.Part{Name: "x1a", WorkOrder: "1200055", Qty: 4}

	tests := []struct {
		change program.Change
		want   string
	}{
		{program.Deleted{Timestamp: t0}, "deleted 2024-03-01T06:00:00Z"},
		{program.Completed{Timestamp: t0}, "completed 2024-03-01T06:00:00Z"},
		{program.RePosted{}, "reposted"},
		{program.ChangeMachine{Machine: "Gemini"}, "machine -> Gemini"},
		{
			program.SwapSheet{Sheet: program.Sheet{Name: "S2", Grade: "A36", MaterialMaster: "A36-0250", HeatNumber: "H1", PONumber: 7}},
			"sheet -> S2 (grade A36, material A36-0250, heat H1, po 7)",
		},
		{
			program.UpdatedSheetData{Fields: []program.SheetField{program.HeatNumber("H2"), program.PONumber(42)}},
			"sheet data heat_number=H2, po_number=42",
		},
		{program.AddPart{Part: x1a}, "add part x1a/1200055 x4"},
		{program.ChangePartQty{Part: x1a}, "part qty x1a/1200055 x4"},
		{program.DeletePart{Part: x1a}, "delete part x1a/1200055"},
	}

	for _, tt := range tests {
		t.Run(string(tt.change.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.want, describeChange(tt.change))
		})
	}
}
