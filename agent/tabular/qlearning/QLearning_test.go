package qlearning

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	env "sfneuman.com/gridlearn/environment"
	ts "sfneuman.com/gridlearn/timestep"
)

// specEnv exposes only the specifications an agent constructor needs
type specEnv struct {
	env.Environment
	actions     int
	obsDims     int
	cardinality env.Cardinality
}

func (s specEnv) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{float64(s.actions - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		s.cardinality)
}

func (s specEnv) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(s.obsDims, nil)
	lowerBound := mat.NewVecDense(s.obsDims, nil)
	bounds := make([]float64, s.obsDims)
	for i := range bounds {
		bounds[i] = 1
	}
	upperBound := mat.NewVecDense(s.obsDims, bounds)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

func testAgentConfig() Config {
	return Config{
		Epsilon:      0,
		EpsilonDecay: 1,
		EpsilonMin:   0,
		LearningRate: 0.1,
		Discount:     0.5,
		StateBins:    []int{2, 2},
		StateLower:   []float64{0, 0},
		StateUpper:   []float64{1, 1},
	}
}

func newTestAgent(t *testing.T) *QLearning {
	e := specEnv{actions: 2, obsDims: 2, cardinality: env.Discrete}
	q, err := New(e, testAgentConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func obsStep(stepType ts.StepType, reward, x, y float64,
	number int) ts.TimeStep {
	return ts.New(stepType, reward, 1, mat.NewVecDense(2, []float64{x, y}),
		number)
}

func TestQLearningTerminalUpdate(t *testing.T) {
	q := newTestAgent(t)

	// A terminal transition has no bootstrapped term, so the update of
	// a zero-valued pair is α·r
	first := obsStep(ts.First, 0, 0.1, 0.1, 0)
	if err := q.ObserveFirst(first); err != nil {
		t.Fatal(err)
	}

	next := obsStep(ts.Last, 1, 0.9, 0.9, 1)
	action := mat.NewVecDense(1, []float64{1})
	if err := q.Observe(action, next); err != nil {
		t.Fatal(err)
	}
	if err := q.Step(); err != nil {
		t.Fatal(err)
	}

	value := q.Table().Row("0:0")[1]
	if math.Abs(value-0.1) > 1e-12 {
		t.Errorf("expected value 0.1, got %v", value)
	}
}

func TestQLearningBootstrappedUpdate(t *testing.T) {
	q := newTestAgent(t)

	// Seed the next state's values so that the bootstrapped target is
	// r + γ·max = 1 + 0.5·2 = 2, updated by α = 0.1
	q.Table().Row("1:1")[0] = 2

	first := obsStep(ts.First, 0, 0.1, 0.1, 0)
	if err := q.ObserveFirst(first); err != nil {
		t.Fatal(err)
	}

	next := obsStep(ts.Mid, 1, 0.9, 0.9, 1)
	action := mat.NewVecDense(1, []float64{0})
	if err := q.Observe(action, next); err != nil {
		t.Fatal(err)
	}
	if err := q.Step(); err != nil {
		t.Fatal(err)
	}

	value := q.Table().Row("0:0")[0]
	if math.Abs(value-0.2) > 1e-12 {
		t.Errorf("expected value 0.2, got %v", value)
	}
}

func TestQLearningObserveFirstRejectsMidStep(t *testing.T) {
	q := newTestAgent(t)

	if err := q.ObserveFirst(obsStep(ts.Mid, 0, 0.1, 0.1, 1)); err == nil {
		t.Error("expected error for a non-first timestep")
	}
}

func TestQLearningStepWithoutObservation(t *testing.T) {
	q := newTestAgent(t)

	if err := q.ObserveFirst(obsStep(ts.First, 0, 0.1, 0.1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := q.Step(); err == nil {
		t.Error("expected error when stepping without a transition")
	}
}

func TestQLearningObserveRejectsBadAction(t *testing.T) {
	q := newTestAgent(t)

	next := obsStep(ts.Mid, 1, 0.9, 0.9, 1)
	if err := q.Observe(nil, next); err == nil {
		t.Error("expected error for a nil action")
	}
	if err := q.Observe(mat.NewVecDense(2, nil), next); err == nil {
		t.Error("expected error for a multi-dimensional action")
	}
}

func TestQLearningGreedySelection(t *testing.T) {
	q := newTestAgent(t)
	q.Table().Row("0:0")[1] = 3

	// ε = 0: the agent must always select the strictly best action
	step := obsStep(ts.First, 0, 0.1, 0.1, 0)
	for i := 0; i < 50; i++ {
		action := q.SelectAction(step)
		if int(action.AtVec(0)) != 1 {
			t.Fatalf("expected greedy action 1, got %v", action.AtVec(0))
		}
	}
}

func TestQLearningTdError(t *testing.T) {
	q := newTestAgent(t)
	q.Table().Row("0:0")[0] = 0.5
	q.Table().Row("1:1")[1] = 2

	transition := ts.Transition{
		State:     mat.NewVecDense(2, []float64{0.1, 0.1}),
		Action:    mat.NewVecDense(1, []float64{0}),
		Reward:    1,
		Discount:  0.5,
		NextState: mat.NewVecDense(2, []float64{0.9, 0.9}),
	}

	// δ = r + γ·max Q(s') − Q(s, a) = 1 + 0.5·2 − 0.5
	tdError := q.TdError(transition)
	if math.Abs(tdError-1.5) > 1e-12 {
		t.Errorf("expected TD error 1.5, got %v", tdError)
	}
}

func TestQLearningEpsilonDecaysPerEpisode(t *testing.T) {
	config := testAgentConfig()
	config.Epsilon = 0.4
	config.EpsilonDecay = 0.5
	config.EpsilonMin = 0.15

	e := specEnv{actions: 2, obsDims: 2, cardinality: env.Discrete}
	q, err := New(e, config, 1)
	if err != nil {
		t.Fatal(err)
	}

	q.EndEpisode()
	if q.Epsilon() != 0.2 {
		t.Errorf("expected epsilon 0.2, got %v", q.Epsilon())
	}
	q.EndEpisode()
	if q.Epsilon() != 0.15 {
		t.Errorf("expected epsilon floored at 0.15, got %v", q.Epsilon())
	}
}

func TestNewQLearningRejectsContinuousActions(t *testing.T) {
	e := specEnv{actions: 2, obsDims: 2, cardinality: env.Continuous}
	if _, err := New(e, testAgentConfig(), 1); err == nil {
		t.Error("expected error for a continuous action space")
	}
}

func TestNewQLearningRejectsMismatchedStateBins(t *testing.T) {
	e := specEnv{actions: 2, obsDims: 3, cardinality: env.Discrete}
	if _, err := New(e, testAgentConfig(), 1); err == nil {
		t.Error("expected error for state bins not covering observations")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := testAgentConfig()
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"epsilon above 1", func(c *Config) { c.Epsilon = 1.5 }},
		{"negative decay", func(c *Config) { c.EpsilonDecay = -0.1 }},
		{"floor above epsilon", func(c *Config) {
			c.Epsilon = 0.1
			c.EpsilonMin = 0.2
		}},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"discount above 1", func(c *Config) { c.Discount = 1.1 }},
		{"no state bins", func(c *Config) { c.StateBins = nil }},
		{"mismatched bounds", func(c *Config) {
			c.StateLower = []float64{0}
		}},
		{"non-finite bounds", func(c *Config) {
			c.StateUpper = []float64{1, math.Inf(1)}
		}},
	}
	for _, test := range tests {
		config := testAgentConfig()
		test.modify(&config)
		if err := config.Validate(); err == nil {
			t.Errorf("%v: expected an error", test.name)
		}
	}
}
