// Package microgrid implements a microgrid energy-dispatch environment.
//
// The environment owns a battery and consumes a time-indexed telemetry
// feed of solar generation, demand, weather, and prices. On each step
// the agent commands battery power, generation curtailment, and the
// fraction of any surplus exported to the grid; the environment applies
// the physically feasible portion of the command, settles the realized
// power flows against the grid connection, and rewards the transition
// through its Task.
package microgrid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	env "sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/feed"
	ts "sfneuman.com/gridlearn/timestep"
	"sfneuman.com/gridlearn/utils/floatutils"
)

// Indices of the observation vector features
const (
	IndexSolar int = iota
	IndexDemand
	IndexSoC
	IndexTemperature
	IndexIrradiance
	IndexHour
	IndexDay
	IndexPriceBuy
	IndexPriceSell
	IndexBatteryHealth
	IndexSolarHealth

	ObservationDims
)

// Indices of the action vector components
const (
	ActionBatteryPower int = iota // [-1, 1]: negative discharges
	ActionCurtailment             // [0, 1]: fraction of generation curtailed
	ActionGridExport              // [0, 1]: fraction of surplus exported

	ActionDims
)

// Observation feature bounds. Every feature is clamped to its bound
// before being placed in an observation, so observations never carry
// out-of-range values.
var (
	obsLowerBound = []float64{0, 0, 0, -40, 0, 0, 0, 0, 0, 0, 0}
	obsUpperBound = []float64{math.Inf(1), math.Inf(1), 1, 60, 1500, 23, 6,
		math.Inf(1), math.Inf(1), 1, 1}

	actionLowerBound = []float64{-1, 0, 0}
	actionUpperBound = []float64{1, 1, 1}
)

// Config holds the physical configuration of a Microgrid environment.
// Dt is the length of one environmental step in hours.
type Config struct {
	Battery BatteryConfig
	Grid    GridConfig
	Dt      float64
}

// Validate returns an error describing the first invalid field of the
// configuration, or nil if the configuration is valid
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return err
	}
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt %v must be positive", c.Dt)
	}
	return nil
}

// Microgrid implements the microgrid dispatch environment. The
// environment is created uninitialized: Reset() must be called before
// the first Step().
//
// The environment mutates only its own battery and time state. Actions
// passed to Step() are never modified; they are clamped into a copy
// before being applied, and an action is applied either fully or, when
// battery feasibility truncates it, at its realized magnitude — never
// partially across components.
type Microgrid struct {
	env.Task
	config      Config
	feed        feed.Feed
	battery     *Battery
	lastStep    ts.TimeStep
	lastFlows   Flows
	discount    float64
	initialized bool
}

// New creates a new Microgrid environment running the argument task on
// the argument feed. Configuration errors surface here, never at
// runtime.
func New(task env.Task, f feed.Feed, config Config,
	discount float64) (*Microgrid, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newMicrogrid: %v", err)
	}
	if f == nil {
		return nil, fmt.Errorf("newMicrogrid: no feed")
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("newMicrogrid: discount %v ∉ [0, 1]", discount)
	}

	battery, err := NewBattery(config.Battery)
	if err != nil {
		return nil, fmt.Errorf("newMicrogrid: %v", err)
	}

	return &Microgrid{
		Task:     task,
		config:   config,
		feed:     f,
		battery:  battery,
		discount: discount,
	}, nil
}

// Reset rewinds the feed, restores the battery to a starting state of
// charge drawn from the Task's Starter, and returns the first timestep
// of the new episode. Reset is deterministic given a deterministic feed
// and Starter.
func (m *Microgrid) Reset() (ts.TimeStep, error) {
	if err := m.feed.Reset(); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not rewind feed: %v",
			err)
	}

	sample, err := m.feed.Next()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: feed has no samples: %w",
			err)
	}

	soc := floatutils.Clip(m.Start().AtVec(0), 0, 1)
	m.battery.Reset(soc)

	obs := m.observation(sample, soc)
	firstStep := ts.New(ts.First, 0, m.discount, obs, 0)

	m.lastStep = firstStep
	m.lastFlows = Flows{}
	m.initialized = true

	return firstStep, nil
}

// Step applies the argument action to the environment and returns the
// next timestep and whether that timestep is the last in the episode.
//
// Calling Step before Reset returns environment.ErrNotInitialized, and
// an action of the wrong dimensionality returns
// environment.ErrInvalidActionShape; neither mutates any state. Feed
// exhaustion ends the episode with done = true rather than failing.
func (m *Microgrid) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if !m.initialized {
		return ts.TimeStep{}, false, env.ErrNotInitialized
	}
	if action == nil || action.Len() != ActionDims {
		got := 0
		if action != nil {
			got = action.Len()
		}
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: expected %v "+
			"components, got %v", env.ErrInvalidActionShape, ActionDims, got)
	}

	a := clampAction(action)

	// Command the battery with the requested bus-side power; the
	// battery truncates to the SoC-feasible rate internally
	power := a.AtVec(ActionBatteryPower)
	if power > 0 {
		power *= m.config.Battery.MaxChargeRate
	} else {
		power *= m.config.Battery.MaxDischargeRate
	}
	m.battery.Apply(power, m.config.Dt)

	// Advance the feed to produce the next observation. An exhausted
	// feed ends the episode; the final observation holds the last
	// telemetry with the updated state of charge.
	var nextObs *mat.VecDense
	exhausted := false
	sample, err := m.feed.Next()
	switch {
	case err == nil:
		nextObs = m.observation(sample, m.battery.SoC())
	case errors.Is(err, feed.ErrExhausted):
		exhausted = true
		nextObs = mat.VecDenseCopyOf(m.lastStep.Observation)
		nextObs.SetVec(IndexSoC, m.battery.SoC())
	default:
		return ts.TimeStep{}, false, fmt.Errorf("step: feed: %v", err)
	}

	reward := m.GetReward(m.lastStep.Observation, a, nextObs)
	nextStep := ts.New(ts.Mid, reward, m.discount, nextObs,
		m.lastStep.Number+1)

	if exhausted {
		nextStep.StepType = ts.Last
		nextStep.SetEnd(ts.FeedExhausted)
	} else {
		m.End(&nextStep)
	}

	m.lastFlows = realizedFlows(m.lastStep.Observation, a, nextObs,
		m.config.Battery, m.config.Grid, m.config.Dt)
	m.lastStep = nextStep

	return nextStep, nextStep.Last(), nil
}

// Flows returns the realized power flows of the most recent step.
// Before the first step of an episode, the zero Flows is returned.
func (m *Microgrid) Flows() Flows {
	return m.lastFlows
}

// Battery returns the environment's battery for inspection
func (m *Microgrid) Battery() *Battery {
	return m.battery
}

// DiscountSpec returns the discounting specification of the environment
func (m *Microgrid) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{m.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (m *Microgrid) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims, obsLowerBound)
	upperBound := mat.NewVecDense(ObservationDims, obsUpperBound)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (m *Microgrid) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, actionLowerBound)
	upperBound := mat.NewVecDense(ActionDims, actionUpperBound)

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Continuous)
}

// String returns a string representation of the environment
func (m *Microgrid) String() string {
	if !m.initialized {
		return "Microgrid | uninitialized"
	}
	obs := m.lastStep.Observation
	str := "Microgrid | SoC: %.2f  |  Solar: %.2f kW  |  Demand: %.2f kW"
	return fmt.Sprintf(str, obs.AtVec(IndexSoC), obs.AtVec(IndexSolar),
		obs.AtVec(IndexDemand))
}

// observation builds the observation vector for the argument sample and
// state of charge, clamping every feature to its declared bound
func (m *Microgrid) observation(s feed.Sample, soc float64) *mat.VecDense {
	// NaN marks a missing price; a zero price is legitimate and kept
	priceBuy := s.PriceBuy
	if math.IsNaN(priceBuy) {
		priceBuy = m.config.Grid.FallbackPriceBuy
	}
	priceSell := s.PriceSell
	if math.IsNaN(priceSell) {
		priceSell = m.config.Grid.FallbackPriceSell
	}

	features := []float64{
		s.Solar,
		s.Demand,
		soc,
		s.Temperature,
		s.Irradiance,
		float64(s.Timestamp.Hour()),
		float64(s.Timestamp.Weekday()),
		priceBuy,
		priceSell,
		s.BatteryHealth,
		s.SolarHealth,
	}

	for i, f := range features {
		if math.IsNaN(f) {
			f = obsLowerBound[i]
		}
		features[i] = floatutils.Clip(f, obsLowerBound[i], obsUpperBound[i])
	}

	return mat.NewVecDense(ObservationDims, features)
}

// clampAction returns a copy of the argument action with every
// component clamped to its declared bound. The argument is never
// modified.
func clampAction(action *mat.VecDense) *mat.VecDense {
	clamped := mat.VecDenseCopyOf(action)
	for i := 0; i < clamped.Len(); i++ {
		clamped.SetVec(i, floatutils.Clip(clamped.AtVec(i),
			actionLowerBound[i], actionUpperBound[i]))
	}
	return clamped
}
