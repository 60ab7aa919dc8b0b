// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. Episodes may end because a
// step limit was reached, because the environment reached a terminal
// state, or because the data feed backing the environment ran out.
type EndType int

const (
	// TerminalStateReached indicates that an episode ended in an
	// environmental terminal state
	TerminalStateReached EndType = iota

	// Timeout indicates that an episode ended due to a step limit
	Timeout

	// FeedExhausted indicates that an episode ended because the
	// time-indexed data feed backing the environment had no more
	// records
	FeedExhausted

	// nilEnd is the ending of a timestep that is not the last in an
	// episode
	nilEnd
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	case FeedExhausted:
		return "FeedExhausted"
	default:
		return "None"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
	endType     EndType
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, d, o, n, nilEnd}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the ending type of the timestep
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// End returns the ending type of the timestep. Timesteps which are not
// the last in their episode have no meaningful ending type.
func (t *TimeStep) End() EndType {
	return t.endType
}

// TerminatesWith returns whether the timestep ends its episode with the
// argument ending type
func (t *TimeStep) TerminatesWith(e EndType) bool {
	return t.Last() && t.endType == e
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}

// Transition packages together a single transition of the
// agent-environment interaction: taking action A in state S leads to
// reward R and next state NextState, in which NextAction is taken.
type Transition struct {
	State      *mat.VecDense
	Action     *mat.VecDense
	Reward     float64
	Discount   float64
	NextState  *mat.VecDense
	NextAction *mat.VecDense
}

// NewTransition packages an action and its resulting timestep, together
// with the preceding timestep, into a Transition
func NewTransition(step TimeStep, action *mat.VecDense, nextStep TimeStep,
	nextAction *mat.VecDense) Transition {
	return Transition{
		State:      step.Observation,
		Action:     action,
		Reward:     nextStep.Reward,
		Discount:   nextStep.Discount,
		NextState:  nextStep.Observation,
		NextAction: nextAction,
	}
}
