package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gridlearn/discretize"
	"sfneuman.com/gridlearn/timestep"
)

// Greedy implements a greedy policy over a tabular value function.
// Greedy policies are typically used as the target policy of an
// off-policy learner.
type Greedy struct {
	table  *Table
	states *discretize.Grid
}

// NewGreedy constructs a new Greedy policy over the argument value
// table. The states grid discretizes observations into the table's
// state keys.
func NewGreedy(table *Table, states *discretize.Grid) *Greedy {
	return &Greedy{table: table, states: states}
}

// SelectAction selects the greedy action for the discretized current
// state, breaking ties toward the lowest action index
func (p *Greedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	key, err := p.states.Key(t.Observation)
	if err != nil {
		panic(fmt.Sprintf("selectAction: could not discretize state: %v",
			err))
	}

	action, _ := p.table.Greedy(key)
	return mat.NewVecDense(1, []float64{float64(action)})
}

// Eval sets the policy to evaluation mode. Greedy policies behave
// identically in both modes.
func (p *Greedy) Eval() {}

// Train sets the policy to training mode
func (p *Greedy) Train() {}

// IsEval indicates whether the policy is in evaluation mode
func (p *Greedy) IsEval() bool { return true }
