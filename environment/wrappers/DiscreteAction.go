// Package wrappers provides wrappers for environments
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gridlearn/discretize"
	env "sfneuman.com/gridlearn/environment"
	ts "sfneuman.com/gridlearn/timestep"
)

// DiscreteAction wraps a continuous-action environment so that it
// presents a single discrete action dimension, usable by tabular
// agents. Action indices are translated to continuous action vectors
// through a discretize.Grid over the wrapped environment's action
// bounds: the index selects a grid cell, and the cell's center is the
// continuous action actually applied.
//
// The translation is lossy. Only the grid's bin centers are reachable
// as continuous actions; any continuous action between centers cannot
// be expressed. This is the documented cost of tabular control over a
// continuous action space.
type DiscreteAction struct {
	env.Environment
	grid *discretize.Grid
}

// NewDiscreteAction wraps the argument environment, partitioning each
// of its action dimensions into bins[i] equal-width bins. The wrapped
// environment's action specification must be bounded.
func NewDiscreteAction(e env.Environment,
	bins []int) (*DiscreteAction, error) {
	spec := e.ActionSpec()
	grid, err := discretize.NewGrid(bins, spec.LowerBound, spec.UpperBound)
	if err != nil {
		return nil, fmt.Errorf("newDiscreteAction: %v", err)
	}

	return &DiscreteAction{Environment: e, grid: grid}, nil
}

// NumActions returns the number of discrete actions the wrapper exposes
func (d *DiscreteAction) NumActions() int {
	return d.grid.Size()
}

// Grid returns the action grid used for the index-to-action translation
func (d *DiscreteAction) Grid() *discretize.Grid {
	return d.grid
}

// Step translates the argument action, a 1-dimensional vector holding
// a discrete action index, into the center of the corresponding action
// grid cell and steps the wrapped environment with it
func (d *DiscreteAction) Step(action *mat.VecDense) (ts.TimeStep, bool,
	error) {
	if action == nil || action.Len() != 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: expected a "+
			"1-dimensional action index", env.ErrInvalidActionShape)
	}

	continuous, err := d.grid.Vector(int(action.AtVec(0)))
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}

	return d.Environment.Step(continuous)
}

// ActionSpec returns the action specification of the wrapper: a single
// discrete dimension over [0, NumActions() - 1]
func (d *DiscreteAction) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{float64(d.grid.Size() - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}
