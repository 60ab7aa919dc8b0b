// Package policy implements policies over tabular action values
package policy

// Table stores estimated action values per discretized state. Rows are
// created lazily on first visit with all values zero, and are never
// removed; the table grows monotonically over training, bounded by the
// finite cardinality of the state discretization.
//
// A Table is owned by a single agent and mutated only from the single
// training goroutine; it performs no locking of its own.
type Table struct {
	values  map[string][]float64
	actions int
}

// NewTable returns an empty value table over the argument number of
// actions
func NewTable(actions int) *Table {
	return &Table{
		values:  make(map[string][]float64),
		actions: actions,
	}
}

// NumActions returns the number of actions the table stores values for
func (t *Table) NumActions() int {
	return t.actions
}

// States returns the number of state rows created so far
func (t *Table) States() int {
	return len(t.values)
}

// Row returns the action-value row for the argument state key, creating
// a zero row on first visit. The returned slice aliases the table's
// storage, so writes to it update the table.
func (t *Table) Row(key string) []float64 {
	row, ok := t.values[key]
	if !ok {
		row = make([]float64, t.actions)
		t.values[key] = row
	}
	return row
}

// Greedy returns the greedy action index and its value for the argument
// state key. Ties are broken toward the lowest action index so that
// greedy selection is reproducible. Unvisited states have all-zero
// values, for which Greedy returns action 0.
func (t *Table) Greedy(key string) (int, float64) {
	row, ok := t.values[key]
	if !ok {
		return 0, 0
	}

	action, value := 0, row[0]
	for a := 1; a < len(row); a++ {
		if row[a] > value {
			action, value = a, row[a]
		}
	}
	return action, value
}

// Values returns the table's underlying storage, for serialization
func (t *Table) Values() map[string][]float64 {
	return t.values
}

// SetValues replaces the table's underlying storage, for restoration
// from a snapshot
func (t *Table) SetValues(values map[string][]float64) {
	if values == nil {
		values = make(map[string][]float64)
	}
	t.values = values
}
