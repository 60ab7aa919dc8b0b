package microgrid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	env "sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/timestep"
	"sfneuman.com/gridlearn/utils/floatutils"
)

// SoC band outside which the battery is considered stressed
const (
	stressSoCLow  float64 = 0.2
	stressSoCHigh float64 = 0.8
)

// Weights holds the weight of each objective in the dispatch reward.
// The weighted objectives conflict: aggressive discharging raises
// export revenue but also raises degradation cost and battery stress.
// Conventionally the weights sum to 1.0, but any finite values are
// accepted; zeroing all weights but one isolates that objective.
type Weights struct {
	Economic       float64
	Sustainability float64
	Reliability    float64
	Health         float64
}

// Validate returns an error if any weight is not finite
func (w Weights) Validate() error {
	if !floatutils.Finite(w.Economic, w.Sustainability, w.Reliability,
		w.Health) {
		return fmt.Errorf("reward weights must be finite, got %+v", w)
	}
	return nil
}

// Terms holds the unweighted value of each objective for one step.
// Economic is the net revenue in currency. Sustainability is the
// fraction of available generation that was put to use, in [0, 1].
// Reliability is the negated unserved energy in kWh. Health is the
// negated battery stress, combining cycling rate and SoC excursion.
type Terms struct {
	Economic       float64
	Sustainability float64
	Reliability    float64
	Health         float64
}

// Dispatch implements the economic dispatch task on a microgrid: the
// agent controls battery power, curtailment, and grid export to
// maximize a weighted combination of economic, sustainability,
// reliability, and battery-health objectives.
//
// Episodes end at a step limit or if the state of charge ever leaves
// [0, 1], which the battery's feasibility truncation makes unreachable
// in normal operation.
type Dispatch struct {
	env.Starter
	socEnder  env.Ender
	stepLimit env.StepLimit
	weights   Weights
	battery   BatteryConfig
	grid      GridConfig
	dt        float64
}

// NewDispatch creates and returns a new Dispatch task given a Starter,
// which samples the initial state of charge; the maximum number of
// episode steps; the objective weights; and the physical configuration
// shared with the environment.
func NewDispatch(s env.Starter, episodeSteps int, weights Weights,
	battery BatteryConfig, grid GridConfig, dt float64) (*Dispatch, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("newDispatch: %v", err)
	}
	if err := battery.Validate(); err != nil {
		return nil, fmt.Errorf("newDispatch: %v", err)
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("newDispatch: %v", err)
	}
	if episodeSteps <= 0 {
		return nil, fmt.Errorf("newDispatch: episode steps %v must be "+
			"positive", episodeSteps)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("newDispatch: dt %v must be positive", dt)
	}

	socEnder := env.NewIntervalLimit([]r1.Interval{{Min: 0, Max: 1}},
		[]int{IndexSoC}, timestep.TerminalStateReached)

	return &Dispatch{
		Starter:   s,
		socEnder:  socEnder,
		stepLimit: env.NewStepLimit(episodeSteps),
		weights:   weights,
		battery:   battery,
		grid:      grid,
		dt:        dt,
	}, nil
}

// GetReward returns the weighted multi-objective reward for the
// transition from state to nextState under the argument action. The
// reward is computed from realized power flows, so battery commands
// truncated for feasibility contribute only their realized magnitude.
func (d *Dispatch) GetReward(state, action, nextState *mat.VecDense) float64 {
	terms := d.Terms(state, action, nextState)

	return d.weights.Economic*terms.Economic +
		d.weights.Sustainability*terms.Sustainability +
		d.weights.Reliability*terms.Reliability +
		d.weights.Health*terms.Health
}

// Terms returns the unweighted objective terms for the transition from
// state to nextState under the argument action
func (d *Dispatch) Terms(state, action, nextState *mat.VecDense) Terms {
	flows := realizedFlows(state, action, nextState, d.battery, d.grid, d.dt)
	return d.terms(flows, nextState.AtVec(IndexSoC))
}

func (d *Dispatch) terms(flows Flows, nextSoC float64) Terms {
	var t Terms

	exportRevenue := flows.GridExport * flows.Dt * flows.PriceSell
	importCost := flows.GridImport * flows.Dt * flows.PriceBuy
	degradation := math.Abs(flows.Battery) * flows.Dt *
		d.battery.DegradationCost
	t.Economic = exportRevenue - importCost - degradation

	// Fraction of available generation put to use, 0 when there is no
	// generation to utilize
	available := flows.Generation + flows.Curtailed
	if available > 0 {
		wasted := flows.Curtailed + flows.Spilled
		t.Sustainability = floatutils.Clip(1-wasted/available, 0, 1)
	}

	t.Reliability = -flows.Unmet * flows.Dt

	maxRate := math.Max(d.battery.MaxChargeRate, d.battery.MaxDischargeRate)
	var rateStress float64
	if maxRate > 0 {
		rateStress = math.Pow(flows.Battery/maxRate, 2)
	}
	excursion := math.Max(0, (stressSoCLow-nextSoC)/stressSoCLow) +
		math.Max(0, (nextSoC-stressSoCHigh)/(1-stressSoCHigh))
	t.Health = -(rateStress + excursion)

	return t
}

// AtGoal returns whether the argument state is a goal state. Dispatch
// is a continuing control task with no goal state.
func (d *Dispatch) AtGoal(state mat.Matrix) bool {
	return false
}

// Min returns the minimum attainable reward over all timesteps
func (d *Dispatch) Min() float64 { return math.Inf(-1) }

// Max returns the maximum attainable reward over all timesteps
func (d *Dispatch) Max() float64 { return math.Inf(1) }

// RewardSpec returns the reward specification of the Task
func (d *Dispatch) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{d.Min()})
	upperBound := mat.NewVecDense(1, []float64{d.Max()})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}

// End determines if a timestep is the last timestep in the episode,
// adjusting its StepType and EndType accordingly. Episodes end when the
// state of charge leaves its legal interval or when the step limit is
// reached.
func (d *Dispatch) End(t *timestep.TimeStep) bool {
	if end := d.socEnder.End(t); end {
		return true
	}
	return d.stepLimit.End(t)
}
