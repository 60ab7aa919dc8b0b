// Package qlearning implements the tabular Q-Learning algorithm.
//
// Q-Learning is an off-policy temporal-difference control algorithm:
// actions are selected from an ε-greedy behaviour policy while values
// are updated toward the greedy target policy. Values are stored
// explicitly per discretized (state, action) pair, so the algorithm
// requires a discrete action space and a state discretization whose
// total cardinality fits in memory.
package qlearning

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gridlearn/agent/tabular/policy"
	"sfneuman.com/gridlearn/discretize"
	env "sfneuman.com/gridlearn/environment"
	ts "sfneuman.com/gridlearn/timestep"
)

// QLearning implements the tabular Q-Learning algorithm
type QLearning struct {
	behaviour *policy.EGreedy
	target    *policy.Greedy
	table     *policy.Table
	states    *discretize.Grid

	learningRate float64
	discount     float64

	step     ts.TimeStep // Current timestep
	action   int         // Action taken at the current timestep
	nextStep ts.TimeStep // Timestep resulting from the action
	observed bool        // Whether a full transition has been observed
}

// New creates a new QLearning agent acting in the argument environment,
// which must expose a single discrete action dimension (see
// wrappers.DiscreteAction for continuous-action environments).
func New(e env.Environment, config Config, seed uint64) (*QLearning, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newQLearning: %v", err)
	}

	actionSpec := e.ActionSpec()
	if actionSpec.Shape.Len() != 1 {
		return nil, fmt.Errorf("newQLearning: actions must be " +
			"1-dimensional")
	}
	if actionSpec.Cardinality != env.Discrete {
		return nil, fmt.Errorf("newQLearning: actions must be discrete")
	}
	numActions := int(actionSpec.UpperBound.AtVec(0)) + 1

	obsDims := e.ObservationSpec().Shape.Len()
	if len(config.StateBins) != obsDims {
		return nil, fmt.Errorf("newQLearning: state bins have %v "+
			"dimensions but observations have %v", len(config.StateBins),
			obsDims)
	}

	states, err := discretize.NewGrid(config.StateBins,
		mat.NewVecDense(obsDims, config.StateLower),
		mat.NewVecDense(obsDims, config.StateUpper))
	if err != nil {
		return nil, fmt.Errorf("newQLearning: %v", err)
	}

	table := policy.NewTable(numActions)
	behaviour, err := policy.NewEGreedy(table, states, config.Epsilon,
		config.EpsilonDecay, config.EpsilonMin, seed)
	if err != nil {
		return nil, fmt.Errorf("newQLearning: %v", err)
	}
	target := policy.NewGreedy(table, states)

	return &QLearning{
		behaviour:    behaviour,
		target:       target,
		table:        table,
		states:       states,
		learningRate: config.LearningRate,
		discount:     config.Discount,
	}, nil
}

// SelectAction selects an action from the ε-greedy behaviour policy
func (q *QLearning) SelectAction(t ts.TimeStep) *mat.VecDense {
	return q.behaviour.SelectAction(t)
}

// ObserveFirst records the first timestep in an episode
func (q *QLearning) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %v is not the first in "+
			"its episode", t.Number)
	}
	q.step = t
	q.observed = false
	return nil
}

// Observe records that the argument action led to the argument timestep
func (q *QLearning) Observe(action *mat.VecDense, nextStep ts.TimeStep) error {
	if action == nil || action.Len() != 1 {
		return fmt.Errorf("observe: expected a 1-dimensional action index")
	}

	q.action = int(action.AtVec(0))
	q.nextStep = nextStep
	q.observed = true
	return nil
}

// Step performs the Q-Learning update on the most recently observed
// transition:
//
//	Q[s,a] ← Q[s,a] + α(r + γ·max_a' Q[s',a'] − Q[s,a])
//
// where the bootstrapped term is dropped on the last timestep of an
// episode. Unseen (s, a) pairs have value 0 before their first update.
func (q *QLearning) Step() error {
	if !q.observed {
		return fmt.Errorf("step: no transition observed")
	}

	key, err := q.states.Key(q.step.Observation)
	if err != nil {
		return fmt.Errorf("step: could not discretize state: %v", err)
	}
	row := q.table.Row(key)

	target := q.nextStep.Reward
	if !q.nextStep.Last() {
		nextKey, err := q.states.Key(q.nextStep.Observation)
		if err != nil {
			return fmt.Errorf("step: could not discretize state: %v", err)
		}
		_, maxValue := q.table.Greedy(nextKey)
		target += q.discount * maxValue
	}

	row[q.action] += q.learningRate * (target - row[q.action])

	q.step = q.nextStep
	q.observed = false
	return nil
}

// TdError returns the temporal-difference error of the argument
// transition under the current value table
func (q *QLearning) TdError(t ts.Transition) float64 {
	key, err := q.states.Key(t.State)
	if err != nil {
		panic(fmt.Sprintf("tdError: could not discretize state: %v", err))
	}
	nextKey, err := q.states.Key(t.NextState)
	if err != nil {
		panic(fmt.Sprintf("tdError: could not discretize state: %v", err))
	}

	action := int(t.Action.AtVec(0))
	_, maxValue := q.table.Greedy(nextKey)

	return t.Reward + t.Discount*maxValue - q.table.Row(key)[action]
}

// EndEpisode performs cleanup at the end of an episode, decaying the
// behaviour policy's exploration rate
func (q *QLearning) EndEpisode() {
	q.behaviour.DecayEpsilon()
}

// Epsilon returns the behaviour policy's current exploration rate
func (q *QLearning) Epsilon() float64 {
	return q.behaviour.Epsilon()
}

// Table returns the agent's value table
func (q *QLearning) Table() *policy.Table {
	return q.table
}

// Eval sets the agent to evaluation mode, in which it acts greedily
func (q *QLearning) Eval() { q.behaviour.Eval() }

// Train sets the agent to training mode
func (q *QLearning) Train() { q.behaviour.Train() }

// IsEval indicates whether the agent is in evaluation mode
func (q *QLearning) IsEval() bool { return q.behaviour.IsEval() }
