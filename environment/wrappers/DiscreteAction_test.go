package wrappers

import (
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	env "sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/environment/microgrid"
	"sfneuman.com/gridlearn/feed"
)

func newTestEnvironment(t *testing.T) *microgrid.Microgrid {
	start := time.Date(2021, time.June, 7, 0, 0, 0, 0, time.UTC)
	samples := make([]feed.Sample, 48)
	for i := range samples {
		samples[i] = feed.Sample{
			Demand:        15,
			PriceBuy:      0.12,
			PriceSell:     0.07,
			BatteryHealth: 1,
			SolarHealth:   1,
			Timestamp:     start.Add(time.Duration(i) * time.Hour),
		}
	}
	telemetry, err := feed.NewRecords(samples)
	if err != nil {
		t.Fatal(err)
	}

	config := microgrid.Config{
		Battery: microgrid.BatteryConfig{
			Capacity:         100,
			InitialSoC:       0.5,
			MaxChargeRate:    50,
			MaxDischargeRate: 50,
			Efficiency:       0.9,
			DegradationCost:  0.01,
		},
		Grid: microgrid.GridConfig{
			MaxImport:         40,
			MaxExport:         40,
			FallbackPriceBuy:  0.12,
			FallbackPriceSell: 0.07,
		},
		Dt: 1.0,
	}

	starter := env.NewUniformStarter([]r1.Interval{{Min: 0.5, Max: 0.5}}, 1)
	task, err := microgrid.NewDispatch(starter, 24,
		microgrid.Weights{Economic: 1}, config.Battery, config.Grid,
		config.Dt)
	if err != nil {
		t.Fatal(err)
	}

	m, err := microgrid.New(task, telemetry, config, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDiscreteActionSpec(t *testing.T) {
	d, err := NewDiscreteAction(newTestEnvironment(t), []int{5, 3, 2})
	if err != nil {
		t.Fatal(err)
	}

	if d.NumActions() != 30 {
		t.Errorf("expected 30 actions, got %v", d.NumActions())
	}

	spec := d.ActionSpec()
	if spec.Shape.Len() != 1 {
		t.Errorf("expected a 1-dimensional action space, got %v",
			spec.Shape.Len())
	}
	if spec.Cardinality != env.Discrete {
		t.Errorf("expected a discrete action space, got %v", spec.Cardinality)
	}
	if spec.UpperBound.AtVec(0) != 29 {
		t.Errorf("expected upper bound 29, got %v", spec.UpperBound.AtVec(0))
	}
}

func TestDiscreteActionTranslatesIndices(t *testing.T) {
	d, err := NewDiscreteAction(newTestEnvironment(t), []int{5, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Reset(); err != nil {
		t.Fatal(err)
	}

	// Index 24 is cell (4, 0, 0): battery bin 4 of 5 over [-1, 1] has
	// center 0.8, so the battery charges at 0.8 · 50 = 40 kW, storing
	// 36 kWh: soc = 0.5 + 36/100 = 0.86
	step, done, err := d.Step(mat.NewVecDense(1, []float64{24}))
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("episode should not have ended")
	}

	soc := step.Observation.AtVec(microgrid.IndexSoC)
	if soc < 0.86-1e-9 || soc > 0.86+1e-9 {
		t.Errorf("expected SoC 0.86, got %v", soc)
	}
}

func TestDiscreteActionRejectsBadIndices(t *testing.T) {
	d, err := NewDiscreteAction(newTestEnvironment(t), []int{5, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Reset(); err != nil {
		t.Fatal(err)
	}

	if _, _, err := d.Step(nil); !errors.Is(err,
		env.ErrInvalidActionShape) {
		t.Errorf("expected ErrInvalidActionShape, got %v", err)
	}
	if _, _, err := d.Step(mat.NewVecDense(3, nil)); !errors.Is(err,
		env.ErrInvalidActionShape) {
		t.Errorf("expected ErrInvalidActionShape, got %v", err)
	}
	if _, _, err := d.Step(mat.NewVecDense(1,
		[]float64{30})); err == nil {
		t.Error("expected error for an out-of-range action index")
	}
}

func TestNewDiscreteActionValidation(t *testing.T) {
	if _, err := NewDiscreteAction(newTestEnvironment(t),
		[]int{5, 3}); err == nil {
		t.Error("expected error for bins not covering every action " +
			"dimension")
	}
	if _, err := NewDiscreteAction(newTestEnvironment(t),
		[]int{5, 0, 2}); err == nil {
		t.Error("expected error for a non-positive bin count")
	}
}
