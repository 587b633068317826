package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateChanges_Identical(t *testing.T) {
	a := testState(testSheet("S1"), Part{Name: "p1", WorkOrder: "wo", Qty: 1})
	b := testState(testSheet("S1"), Part{Name: "p1", WorkOrder: "wo", Qty: 1})
	b.Status = Status{Kind: StatusPosted, At: at(900)}

	assert.Nil(t, CalculateChanges(a, b), "status alone is not a content change")
}

func TestCalculateChanges_QtyAddDelete(t *testing.T) {
	p1 := Part{Name: "p1", WorkOrder: "wo1", Qty: 1}
	p2 := Part{Name: "p2", WorkOrder: "wo1", Qty: 2}
	p3 := Part{Name: "p3", WorkOrder: "wo2", Qty: 1}

	previous := testState(testSheet("A"), p1, p2)
	observed := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "wo1", Qty: 5}, p3)

	changes := CalculateChanges(previous, observed)
	require.NotNil(t, changes)
	assert.Equal(t, []Change{
		ChangePartQty{Part: Part{Name: "p1", WorkOrder: "wo1", Qty: 5}},
		DeletePart{Part: p2},
		AddPart{Part: p3},
	}, changes)
}

func TestCalculateChanges_QtyOnlyIsNotSuppressed(t *testing.T) {
	previous := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "wo1", Qty: 1})
	observed := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "wo1", Qty: 3})

	assert.Equal(t, []Change{
		ChangePartQty{Part: Part{Name: "p1", WorkOrder: "wo1", Qty: 3}},
	}, CalculateChanges(previous, observed))
}

func TestCalculateChanges_SameNameDifferentWorkOrder(t *testing.T) {
	previous := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "wo1", Qty: 1})
	observed := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "wo2", Qty: 1})

	assert.Equal(t, []Change{
		DeletePart{Part: Part{Name: "p1", WorkOrder: "wo1", Qty: 1}},
		AddPart{Part: Part{Name: "p1", WorkOrder: "wo2", Qty: 1}},
	}, CalculateChanges(previous, observed))
}

func TestCalculateChanges_SheetFieldUpdate(t *testing.T) {
	before := testSheet("S12345")
	after := before
	after.Grade = "A709-50T2"

	changes := CalculateChanges(testState(before), testState(after))
	assert.Equal(t, []Change{
		UpdatedSheetData{Fields: []SheetField{Grade("A709-50T2")}},
	}, changes)
}

func TestCalculateChanges_SheetFieldUpdateAllFields(t *testing.T) {
	before := testSheet("S12345")
	after := Sheet{
		Name:           "S12345",
		Grade:          "A709-50T2",
		MaterialMaster: "1xx0xxxA-07001",
		HeatNumber:     "D6001",
		PONumber:       4500000001,
	}

	changes := CalculateChanges(testState(before), testState(after))
	assert.Equal(t, []Change{
		UpdatedSheetData{Fields: []SheetField{
			Grade("A709-50T2"),
			MaterialMaster("1xx0xxxA-07001"),
			HeatNumber("D6001"),
			PONumber(4500000001),
		}},
	}, changes)
}

func TestCalculateChanges_SheetSwap(t *testing.T) {
	before := testSheet("S12345")

	tests := []struct {
		name  string
		after Sheet
	}{
		{"name only", Sheet{Name: "X18053", Grade: before.Grade, MaterialMaster: before.MaterialMaster, HeatNumber: before.HeatNumber, PONumber: before.PONumber}},
		{"name and grade", Sheet{Name: "X18053", Grade: "A709-50T2", MaterialMaster: before.MaterialMaster, HeatNumber: before.HeatNumber, PONumber: before.PONumber}},
		{"everything", Sheet{Name: "X18053", Grade: "A709-50T2", MaterialMaster: "1xx0xxxA-07001", HeatNumber: "D6001", PONumber: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := CalculateChanges(testState(before), testState(tt.after))
			assert.Equal(t, []Change{SwapSheet{Sheet: tt.after}}, changes)
		})
	}
}

func TestCalculateChanges_Ordering(t *testing.T) {
	previous := testState(testSheet("A"),
		Part{Name: "b", WorkOrder: "w", Qty: 1},
		Part{Name: "a", WorkOrder: "w", Qty: 1},
	)
	observed := testState(testSheet("B"),
		Part{Name: "c", WorkOrder: "w", Qty: 1},
		Part{Name: "a", WorkOrder: "w", Qty: 4},
	)
	observed.Machine = "Hercules"

	changes := CalculateChanges(previous, observed)
	require.Len(t, changes, 5)

	kinds := make([]ChangeKind, len(changes))
	for i, c := range changes {
		kinds[i] = c.Kind()
	}
	assert.Equal(t, []ChangeKind{
		KindChangeMachine,
		KindSwapSheet,
		KindChangePartQty,
		KindDeletePart,
		KindAddPart,
	}, kinds)
}

func TestCalculateChanges_DoesNotMutateInputs(t *testing.T) {
	previous := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "w", Qty: 1})
	observed := testState(testSheet("A"), Part{Name: "p1", WorkOrder: "w", Qty: 2}, Part{Name: "p2", WorkOrder: "w", Qty: 1})

	_ = CalculateChanges(previous, observed)

	assert.Equal(t, 1, previous.Parts.Len())
	assert.Equal(t, 2, observed.Parts.Len())
}

func TestCalculateChanges_AppliedToPreviousYieldsObserved(t *testing.T) {
	previous := testState(testSheet("A"),
		Part{Name: "p1", WorkOrder: "w", Qty: 1},
		Part{Name: "p2", WorkOrder: "w", Qty: 2},
	)
	after := testSheet("A")
	after.HeatNumber = "H9"
	observed := testState(after,
		Part{Name: "p2", WorkOrder: "w", Qty: 7},
		Part{Name: "p3", WorkOrder: "w", Qty: 1},
	)

	log := NewChangeLog(previous.ProgramID, PostedFrom(previous))
	log.Append(CalculateChanges(previous, observed)...)

	state, err := CurrentState(log)
	require.NoError(t, err)
	assert.True(t, state.Equal(observed))
}
