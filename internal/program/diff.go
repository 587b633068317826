package program

// CalculateChanges returns the ordered changes that turn previous into
// observed, or nil when they describe the same program content.
//
// Order: machine change, sheet change, then quantity changes and deletions
// found while scanning previous parts, then additions left over in observed.
// Within each group parts are visited by name and work order.
func CalculateChanges(previous, observed MaterializedState) []Change {
	// Quantities take part in this comparison, so a qty-only edit is never
	// mistaken for "no change".
	if previous.Equal(observed) {
		return nil
	}

	var changes []Change

	if previous.Machine != observed.Machine {
		changes = append(changes, ChangeMachine{Machine: observed.Machine})
	}

	if previous.Sheet.Name != observed.Sheet.Name {
		changes = append(changes, SwapSheet{Sheet: observed.Sheet})
	} else if fields := previous.Sheet.Diff(observed.Sheet); len(fields) > 0 {
		changes = append(changes, UpdatedSheetData{Fields: fields})
	}

	remaining := observed.Parts.Clone()
	for _, p := range previous.Parts.Sorted() {
		latest, ok := remaining.Get(p.Key())
		if !ok {
			changes = append(changes, DeletePart{Part: p})
			continue
		}
		if latest.Qty != p.Qty {
			changes = append(changes, ChangePartQty{Part: latest})
		}
		remaining.Remove(latest)
	}

	for _, p := range remaining.Sorted() {
		changes = append(changes, AddPart{Part: p})
	}

	return changes
}
