package policy

import "testing"

func TestTableLazyRows(t *testing.T) {
	table := NewTable(3)

	if table.States() != 0 {
		t.Errorf("new table should have no states, got %v", table.States())
	}

	row := table.Row("0:1")
	if len(row) != 3 {
		t.Fatalf("expected a row of 3 values, got %v", len(row))
	}
	for a, value := range row {
		if value != 0 {
			t.Errorf("action %v of a fresh row has value %v", a, value)
		}
	}
	if table.States() != 1 {
		t.Errorf("expected 1 state after first visit, got %v", table.States())
	}

	// Repeated visits return the same row
	table.Row("0:1")
	if table.States() != 1 {
		t.Errorf("revisiting a state should not grow the table")
	}
}

func TestTableRowAliasesStorage(t *testing.T) {
	table := NewTable(2)

	table.Row("0")[1] = 5
	if table.Row("0")[1] != 5 {
		t.Error("writes through a row should update the table")
	}
}

func TestTableGreedy(t *testing.T) {
	table := NewTable(3)

	// Unvisited states are all-zero, greedy action 0
	action, value := table.Greedy("9:9")
	if action != 0 || value != 0 {
		t.Errorf("expected (0, 0) for an unvisited state, got (%v, %v)",
			action, value)
	}

	row := table.Row("0")
	row[0], row[1], row[2] = 1, 5, 3
	action, value = table.Greedy("0")
	if action != 1 || value != 5 {
		t.Errorf("expected (1, 5), got (%v, %v)", action, value)
	}
}

func TestTableGreedyBreaksTiesTowardLowestIndex(t *testing.T) {
	table := NewTable(3)

	row := table.Row("0")
	row[0], row[1], row[2] = 2, 2, 1
	if action, _ := table.Greedy("0"); action != 0 {
		t.Errorf("expected tie broken toward action 0, got %v", action)
	}

	row[0], row[1], row[2] = 1, 2, 2
	if action, _ := table.Greedy("0"); action != 1 {
		t.Errorf("expected tie broken toward action 1, got %v", action)
	}
}

func TestTableSetValues(t *testing.T) {
	table := NewTable(2)
	table.SetValues(map[string][]float64{"0": {1, 2}})

	if action, value := table.Greedy("0"); action != 1 || value != 2 {
		t.Errorf("expected restored values, got (%v, %v)", action, value)
	}

	// A nil restore leaves an empty, usable table
	table.SetValues(nil)
	if table.States() != 0 {
		t.Errorf("expected an empty table, got %v states", table.States())
	}
	table.Row("1")
}
