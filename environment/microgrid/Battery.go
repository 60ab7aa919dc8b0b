package microgrid

import (
	"fmt"
	"math"

	"sfneuman.com/gridlearn/utils/floatutils"
)

// BatteryConfig holds the physical parameters of the battery storage
// system. Capacity is in kWh, rates in kW, and the efficiency is the
// one-way charge/discharge efficiency so that the round-trip efficiency
// is Efficiency².
type BatteryConfig struct {
	Capacity         float64
	InitialSoC       float64
	MaxChargeRate    float64
	MaxDischargeRate float64
	Efficiency       float64
	DegradationCost  float64 // Currency per kWh of battery throughput
}

// Validate returns an error describing the first invalid field of the
// configuration, or nil if the configuration is valid
func (c BatteryConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("battery capacity %v must be positive", c.Capacity)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("initial SoC %v ∉ [0, 1]", c.InitialSoC)
	}
	if c.MaxChargeRate < 0 || c.MaxDischargeRate < 0 {
		return fmt.Errorf("charge/discharge rates cannot be negative")
	}
	if c.Efficiency <= 0 || c.Efficiency > 1 {
		return fmt.Errorf("efficiency %v ∉ (0, 1]", c.Efficiency)
	}
	if c.DegradationCost < 0 {
		return fmt.Errorf("degradation cost cannot be negative")
	}
	return nil
}

// Battery tracks the state of charge of the battery storage system.
// All mutation happens through Apply(), which truncates commanded power
// to the SoC-feasible rate before changing state.
type Battery struct {
	config     BatteryConfig
	soc        float64
	throughput float64 // Total kWh moved through the battery
}

// NewBattery returns a battery at the configured initial state of
// charge
func NewBattery(config BatteryConfig) (*Battery, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newBattery: %v", err)
	}
	return &Battery{config: config, soc: config.InitialSoC}, nil
}

// SoC returns the current state of charge as a fraction in [0, 1]
func (b *Battery) SoC() float64 {
	return b.soc
}

// Cycles returns the equivalent full cycle count, where one cycle is a
// full charge plus a full discharge
func (b *Battery) Cycles() float64 {
	return b.throughput / 2 / b.config.Capacity
}

// Reset sets the battery to the argument state of charge, clamped to
// [0, 1], and clears the throughput counter
func (b *Battery) Reset(soc float64) {
	b.soc = floatutils.Clip(soc, 0, 1)
	b.throughput = 0
}

// Apply commands the battery with a bus-side power in kW over an
// interval of dt hours. Positive power charges the battery, negative
// power discharges it. The commanded power is truncated to the rate
// that keeps the state of charge within [0, 1], and the realized
// bus-side power is returned; callers must use the realized power, not
// the commanded power, for all downstream energy accounting.
func (b *Battery) Apply(power, dt float64) float64 {
	if dt <= 0 || power == 0 {
		return 0
	}

	eta := b.config.Efficiency

	if power > 0 {
		// Charging: energy stored is power·η·dt
		feasible := (1 - b.soc) * b.config.Capacity / (eta * dt)
		realized := math.Min(power, feasible)

		b.soc = floatutils.Clip(
			b.soc+realized*eta*dt/b.config.Capacity, 0, 1)
		b.throughput += realized * dt
		return realized
	}

	// Discharging: energy drained is power/η·dt
	feasible := b.soc * b.config.Capacity * eta / dt
	realized := math.Min(-power, feasible)

	b.soc = floatutils.Clip(
		b.soc-realized/eta*dt/b.config.Capacity, 0, 1)
	b.throughput += realized * dt
	return -realized
}
