package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"sfneuman.com/gridlearn/discretize"
	"sfneuman.com/gridlearn/timestep"
	"sfneuman.com/gridlearn/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a tabular value function.
// With probability ε a uniformly random action index is selected;
// otherwise the greedy action for the discretized current state is
// selected, with ties broken toward the lowest index.
//
// In evaluation mode the policy acts fully greedily regardless of ε.
type EGreedy struct {
	table   *Table
	states  *discretize.Grid
	epsilon float64
	decay   float64 // Multiplicative per-episode decay of ε
	floor   float64 // Minimum ε the decay can reach
	seed    rand.Source
	eval    bool
}

// NewEGreedy constructs a new EGreedy policy over the argument value
// table, where e is the probability with which a random action is
// selected, decayed by the factor decay each episode down to floor.
// The states grid discretizes observations into the table's state keys.
func NewEGreedy(table *Table, states *discretize.Grid, e, decay,
	floor float64, seed uint64) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon %v ∉ [0, 1]", e)
	}
	if decay < 0 || decay > 1 {
		return nil, fmt.Errorf("newEGreedy: decay %v ∉ [0, 1]", decay)
	}
	if floor < 0 || floor > e {
		return nil, fmt.Errorf("newEGreedy: floor %v ∉ [0, %v]", floor, e)
	}

	return &EGreedy{
		table:   table,
		states:  states,
		epsilon: e,
		decay:   decay,
		floor:   floor,
		seed:    rand.NewSource(seed),
	}, nil
}

// SelectAction selects an action from the ε-greedy policy, returning
// the action as a 1-dimensional vector holding the action index
func (p *EGreedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	key, err := p.states.Key(t.Observation)
	if err != nil {
		panic(fmt.Sprintf("selectAction: could not discretize state: %v",
			err))
	}

	greedyAction, _ := p.table.Greedy(key)

	epsilon := p.epsilon
	if p.eval {
		epsilon = 0
	}

	// Categorical distribution over actions: ε spread uniformly, the
	// remaining mass on the greedy action
	numActions := p.table.NumActions()
	prob := epsilon / float64(numActions)
	actionProbabilities := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		actionProbabilities[i] = prob
	}
	actionProbabilities[greedyAction] += 1.0 - epsilon

	dist := distuv.NewCategorical(actionProbabilities, p.seed)

	return mat.NewVecDense(1, []float64{dist.Rand()})
}

// Epsilon returns the current exploration rate
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the current exploration rate, used when restoring a
// snapshotted agent
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// DecayEpsilon decays the exploration rate by the configured factor,
// stopping at the configured floor. Called once per episode.
func (p *EGreedy) DecayEpsilon() {
	p.epsilon = floatutils.Max(p.epsilon*p.decay, p.floor)
}

// Eval sets the policy to evaluation mode, in which it acts greedily
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval indicates whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }
