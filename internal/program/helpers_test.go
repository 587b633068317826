package program

import "time"

// at returns a fixed UTC time offset by the given seconds.
func at(sec int) time.Time {
	return time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func testSheet(name string) Sheet {
	return Sheet{
		Name:           name,
		Grade:          "50/50W",
		MaterialMaster: "50/50W-0100",
		HeatNumber:     "A4A100",
		PONumber:       4500252867,
	}
}

func posted(sec int) Posted {
	return Posted{
		Timestamp: at(sec),
		Machine:   "Titan",
		Sheet:     testSheet("S12345"),
		Parts:     NewParts(Part{Name: "x1a", WorkOrder: "1200055", Qty: 1}),
	}
}

func testState(sheet Sheet, parts ...Part) MaterializedState {
	return MaterializedState{
		ProgramID: 51234,
		Machine:   "Titan",
		Sheet:     sheet,
		Parts:     NewParts(parts...),
		Status:    Status{Kind: StatusPosted, At: at(0)},
	}
}
