package microgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultBatteryConfig = BatteryConfig{
	Capacity:         100,
	InitialSoC:       0.5,
	MaxChargeRate:    50,
	MaxDischargeRate: 50,
	Efficiency:       0.9,
	DegradationCost:  0.01,
}

func TestBatteryChargeWithLosses(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	// Charging at 50 kW for 1 h stores 50 * 0.9 = 45 kWh:
	// soc = 0.5 + 45/100 = 0.95
	realized := b.Apply(50, 1)
	assert.InDelta(t, 50, realized, 1e-12)
	assert.InDelta(t, 0.95, b.SoC(), 1e-12)
}

func TestBatteryDischargeWithLosses(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	// Discharging 9 kW for 1 h drains 9/0.9 = 10 kWh:
	// soc = 0.5 - 10/100 = 0.4
	realized := b.Apply(-9, 1)
	assert.InDelta(t, -9, realized, 1e-12)
	assert.InDelta(t, 0.4, b.SoC(), 1e-12)
}

func TestBatteryChargeTruncatedAtCeiling(t *testing.T) {
	config := defaultBatteryConfig
	config.InitialSoC = 0.95
	b, err := NewBattery(config)
	require.NoError(t, err)

	// Only (1 - 0.95) * 100 / 0.9 = 5.555... kW can be absorbed in 1 h
	realized := b.Apply(50, 1)
	assert.InDelta(t, 5.0/0.9, realized, 1e-9)
	assert.InDelta(t, 1.0, b.SoC(), 1e-12)
	assert.LessOrEqual(t, b.SoC(), 1.0)
}

func TestBatteryDischargeTruncatedAtFloor(t *testing.T) {
	config := defaultBatteryConfig
	config.InitialSoC = 0.05
	b, err := NewBattery(config)
	require.NoError(t, err)

	// Only 0.05 * 100 * 0.9 = 4.5 kW is available for 1 h; the commanded
	// 50 kW discharge must land the state of charge exactly on the floor
	realized := b.Apply(-50, 1)
	assert.InDelta(t, -4.5, realized, 1e-9)
	assert.InDelta(t, 0, b.SoC(), 1e-12)
	assert.GreaterOrEqual(t, b.SoC(), 0.0)
}

func TestBatterySoCStaysInBounds(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	powers := []float64{50, 50, 50, -50, -50, -50, -50, 30, -10, 50, 50}
	for _, power := range powers {
		b.Apply(power, 1)
		assert.GreaterOrEqual(t, b.SoC(), 0.0)
		assert.LessOrEqual(t, b.SoC(), 1.0)
	}
}

func TestBatteryZeroPowerAndZeroDt(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	assert.Zero(t, b.Apply(0, 1))
	assert.Zero(t, b.Apply(50, 0))
	assert.InDelta(t, 0.5, b.SoC(), 1e-12)
}

func TestBatteryCycleCounting(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	// 50 kWh in plus 50 kWh out of a 100 kWh battery is half a cycle
	b.Apply(50, 1)
	b.Apply(-50, 1)
	assert.InDelta(t, 0.5, b.Cycles(), 1e-9)
}

func TestBatteryReset(t *testing.T) {
	b, err := NewBattery(defaultBatteryConfig)
	require.NoError(t, err)

	b.Apply(50, 1)
	b.Reset(0.3)
	assert.InDelta(t, 0.3, b.SoC(), 1e-12)
	assert.Zero(t, b.Cycles())

	// Out-of-range starting states are clamped
	b.Reset(1.7)
	assert.InDelta(t, 1.0, b.SoC(), 1e-12)
	b.Reset(-0.2)
	assert.InDelta(t, 0.0, b.SoC(), 1e-12)
}

func TestBatteryConfigValidate(t *testing.T) {
	invalid := []BatteryConfig{
		{Capacity: 0, InitialSoC: 0.5, Efficiency: 0.9},
		{Capacity: 100, InitialSoC: -0.1, Efficiency: 0.9},
		{Capacity: 100, InitialSoC: 1.1, Efficiency: 0.9},
		{Capacity: 100, InitialSoC: 0.5, MaxChargeRate: -1, Efficiency: 0.9},
		{Capacity: 100, InitialSoC: 0.5, Efficiency: 0},
		{Capacity: 100, InitialSoC: 0.5, Efficiency: 1.1},
		{Capacity: 100, InitialSoC: 0.5, Efficiency: 0.9,
			DegradationCost: -1},
	}
	for i, config := range invalid {
		assert.Errorf(t, config.Validate(), "config %v should be invalid", i)
	}

	assert.NoError(t, defaultBatteryConfig.Validate())

	_, err := NewBattery(BatteryConfig{})
	assert.Error(t, err)
}
