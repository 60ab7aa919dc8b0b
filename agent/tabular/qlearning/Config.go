package qlearning

import (
	"fmt"

	"sfneuman.com/gridlearn/agent"
	env "sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/utils/floatutils"
)

// Config represents a configuration for the QLearning agent. The state
// discretization is part of the configuration: StateBins gives the
// number of bins per observation dimension, and StateLower/StateUpper
// give the finite bounds the bins partition. Observation dimensions
// with unbounded environmental limits must be given finite practical
// bounds here.
type Config struct {
	Epsilon      float64 // Initial exploration rate
	EpsilonDecay float64 // Multiplicative per-episode decay of ε
	EpsilonMin   float64 // Floor the decay stops at
	LearningRate float64
	Discount     float64

	StateBins  []int
	StateLower []float64
	StateUpper []float64
}

// CreateAgent creates the agent from the Config. Values are always
// initialized to zero.
func (c Config) CreateAgent(e env.Environment,
	seed uint64) (agent.Agent, error) {
	return New(e, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon %v ∉ [0, 1]", c.Epsilon)
	}
	if c.EpsilonDecay < 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay %v ∉ [0, 1]", c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("epsilon floor %v ∉ [0, %v]", c.EpsilonMin,
			c.Epsilon)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate %v ∉ (0, 1]", c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount %v ∉ [0, 1]", c.Discount)
	}
	if len(c.StateBins) == 0 {
		return fmt.Errorf("no state bins")
	}
	if len(c.StateLower) != len(c.StateBins) ||
		len(c.StateUpper) != len(c.StateBins) {
		return fmt.Errorf("state bounds lengths %v, %v must match state "+
			"bins length %v", len(c.StateLower), len(c.StateUpper),
			len(c.StateBins))
	}
	if !floatutils.Finite(c.StateLower...) ||
		!floatutils.Finite(c.StateUpper...) {
		return fmt.Errorf("state bounds must be finite")
	}
	return nil
}
