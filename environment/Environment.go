// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gridlearn/timestep"
)

// ErrNotInitialized is returned when Step() is called on an
// environment before the first call to Reset(). Environments must not
// mutate any state before returning this error.
var ErrNotInitialized = errors.New("environment not initialized: Reset() " +
	"must be called before Step()")

// ErrInvalidActionShape is returned when the action passed to Step()
// does not have the dimensionality declared by the environment's
// ActionSpec. The action is rejected before any physical computation.
var ErrInvalidActionShape = errors.New("action has invalid shape")

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when and how episodes end. If an episode should end
// at the argument timestep, End() modifies the timestep so that its
// StepType field is timestep.Last, sets the timestep's EndType, and
// returns true.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment, as well as the starting and ending conditions of the
// task.
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState *mat.VecDense) float64
	AtGoal(state mat.Matrix) bool
	Min() float64 // Minimum possible reward
	Max() float64 // Maximum possible reward
	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a Task to
// complete.
//
// Environments are created uninitialized: Reset() must be called before
// the first call to Step(), and Step() on an uninitialized environment
// returns ErrNotInitialized without mutating any state.
type Environment interface {
	Task
	Reset() (timestep.TimeStep, error)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
