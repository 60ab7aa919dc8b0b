package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"sfneuman.com/gridlearn/timestep"
)

func midStep(observation float64, number int) timestep.TimeStep {
	return timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(1, []float64{observation}), number)
}

func TestStepLimitEndsAtLimit(t *testing.T) {
	ender := NewStepLimit(3)

	step := midStep(0, 2)
	if ender.End(&step) {
		t.Error("episode should not end below the step limit")
	}

	step = midStep(0, 3)
	if !ender.End(&step) {
		t.Error("episode should end at the step limit")
	}
	if !step.TerminatesWith(timestep.Timeout) {
		t.Errorf("expected a timeout ending, got %v", step.End())
	}
}

func TestIntervalLimitEndsOutsideInterval(t *testing.T) {
	ender := NewIntervalLimit([]r1.Interval{{Min: 0, Max: 1}}, []int{0},
		timestep.TerminalStateReached)

	step := midStep(0.5, 1)
	if ender.End(&step) {
		t.Error("episode should not end inside the interval")
	}

	step = midStep(1.5, 1)
	if !ender.End(&step) {
		t.Error("episode should end outside the interval")
	}
	if !step.TerminatesWith(timestep.TerminalStateReached) {
		t.Errorf("expected a terminal-state ending, got %v", step.End())
	}
}

func TestFunctionEnderEndsWhenFunctionTrue(t *testing.T) {
	ender := NewFunctionEnder(func(obs *mat.VecDense) bool {
		return obs.AtVec(0) < 0
	}, timestep.TerminalStateReached)

	step := midStep(0.5, 1)
	if ender.End(&step) {
		t.Error("episode should not end while the function is false")
	}

	step = midStep(-0.5, 1)
	if !ender.End(&step) {
		t.Error("episode should end once the function is true")
	}
	if !step.Last() {
		t.Error("ending should mark the timestep as last")
	}
	if !step.TerminatesWith(timestep.TerminalStateReached) {
		t.Errorf("expected a terminal-state ending, got %v", step.End())
	}
}

func TestUniformStarterDegenerateInterval(t *testing.T) {
	starter := NewUniformStarter([]r1.Interval{{Min: 0.5, Max: 0.5}}, 1)

	for i := 0; i < 5; i++ {
		start := starter.Start()
		if start.Len() != 1 || start.AtVec(0) != 0.5 {
			t.Errorf("expected the degenerate start 0.5, got %v", start)
		}
	}
}
