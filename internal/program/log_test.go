package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentState_SeedRoundTrip(t *testing.T) {
	seed := posted(0)

	state, err := CurrentState(NewChangeLog(51234, seed))
	require.NoError(t, err)

	assert.Equal(t, MaterializedState{
		ProgramID: 51234,
		Machine:   seed.Machine,
		Sheet:     seed.Sheet,
		Parts:     seed.Parts,
		Status:    Status{Kind: StatusPosted, At: seed.Timestamp},
	}, state)
}

func TestCurrentState_EmptyLog(t *testing.T) {
	_, err := CurrentState(ChangeLog{ProgramID: 7})
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
}

func TestCurrentState_NotSeededByPosted(t *testing.T) {
	log := ChangeLog{ProgramID: 7, Changes: []Change{RePosted{}, posted(500)}}

	_, err := CurrentState(log)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.Contains(t, err.Error(), "reposted")
}

func TestCurrentState_FoldsEveryVariant(t *testing.T) {
	log := NewChangeLog(51234, posted(0))

	newSheet := testSheet("X18053")
	log.Append(
		ChangeMachine{Machine: "Hercules"},
		SwapSheet{Sheet: newSheet},
		UpdatedSheetData{Fields: []SheetField{HeatNumber("D6001"), PONumber(42)}},
		AddPart{Part: Part{Name: "x2", WorkOrder: "1200056", Qty: 4}},
		ChangePartQty{Part: Part{Name: "x1a", WorkOrder: "1200055", Qty: 9}},
		DeletePart{Part: Part{Name: "ghost", WorkOrder: "none"}},
		RePosted{},
		Deleted{Timestamp: at(60)},
	)

	state, err := CurrentState(log)
	require.NoError(t, err)

	wantSheet := newSheet
	wantSheet.HeatNumber = "D6001"
	wantSheet.PONumber = 42

	assert.Equal(t, "Hercules", state.Machine)
	assert.Equal(t, wantSheet, state.Sheet)
	assert.True(t, state.Parts.Equal(NewParts(
		Part{Name: "x1a", WorkOrder: "1200055", Qty: 9},
		Part{Name: "x2", WorkOrder: "1200056", Qty: 4},
	)))
	assert.Equal(t, Status{Kind: StatusDeleted, At: at(60)}, state.Status)
}

func TestCurrentState_CompletedMapsToUpdated(t *testing.T) {
	log := NewChangeLog(1, posted(0))
	log.Append(Completed{Timestamp: at(3600)})

	state, err := CurrentState(log)
	require.NoError(t, err)
	assert.Equal(t, Status{Kind: StatusUpdated, At: at(3600)}, state.Status)
}

func TestCurrentState_LaterPostedReplacesEverything(t *testing.T) {
	log := NewChangeLog(1, posted(0))
	log.Append(
		AddPart{Part: Part{Name: "extra", WorkOrder: "w", Qty: 1}},
		Deleted{Timestamp: at(100)},
		Posted{Timestamp: at(7200), Machine: "Hercules", Sheet: testSheet("Z1"), Parts: NewParts()},
	)

	state, err := CurrentState(log)
	require.NoError(t, err)
	assert.Equal(t, "Hercules", state.Machine)
	assert.Equal(t, "Z1", state.Sheet.Name)
	assert.Equal(t, 0, state.Parts.Len())
	assert.Equal(t, Status{Kind: StatusPosted, At: at(7200)}, state.Status)
}

func TestCurrentState_DoesNotAliasSeedParts(t *testing.T) {
	seed := posted(0)
	log := NewChangeLog(1, seed)
	log.Append(AddPart{Part: Part{Name: "new", WorkOrder: "w", Qty: 1}})

	_, err := CurrentState(log)
	require.NoError(t, err)
	assert.Equal(t, 1, seed.Parts.Len())
}

func TestChangeLog_FlattenRepostsKeepsSeed(t *testing.T) {
	log := NewChangeLog(1, posted(0))
	log.Append(Deleted{Timestamp: at(5)}, posted(9))

	log.FlattenReposts(DefaultRepostThreshold)

	require.NoError(t, log.Validate())
	assert.Equal(t, []Change{posted(0), RePosted{}}, log.Changes)
}

func TestParseProgramID(t *testing.T) {
	id, err := ParseProgramID(" 51234 ")
	require.NoError(t, err)
	assert.Equal(t, ProgramID(51234), id)
	assert.Equal(t, "51234", id.String())

	for _, raw := range []string{"", "P51234", "-1", "99999999999"} {
		_, err := ParseProgramID(raw)
		require.Error(t, err, raw)
		assert.True(t, IsMalformed(err), raw)
	}
}
