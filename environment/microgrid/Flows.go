package microgrid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GridConfig holds the parameters of the grid connection. Power limits
// are in kW; a zero limit disables the corresponding flow. Fallback
// prices are used whenever a feed sample carries no price (NaN).
type GridConfig struct {
	MaxImport         float64
	MaxExport         float64
	FallbackPriceBuy  float64
	FallbackPriceSell float64
}

// Validate returns an error describing the first invalid field of the
// configuration, or nil if the configuration is valid
func (c GridConfig) Validate() error {
	if c.MaxImport < 0 || c.MaxExport < 0 {
		return fmt.Errorf("grid power limits cannot be negative")
	}
	if c.FallbackPriceBuy < 0 || c.FallbackPriceSell < 0 {
		return fmt.Errorf("fallback prices cannot be negative")
	}
	return nil
}

// Flows holds the realized power flows of a single environmental step,
// after curtailment, battery feasibility truncation, and grid capacity
// limits have been applied. All powers are in kW and are nonnegative
// except Battery, which is positive when the battery supplies the bus
// (discharging) and negative when it draws from it (charging).
type Flows struct {
	Generation float64 // Generation after curtailment
	Curtailed  float64 // Generation deliberately curtailed
	Battery    float64 // Realized bus-side battery power
	GridImport float64
	GridExport float64
	Spilled    float64 // Surplus neither exported nor stored
	Unmet      float64 // Demand left unserved
	PriceBuy   float64 // Price in effect during the interval
	PriceSell  float64
	Dt         float64 // Interval length in hours
}

// realizedFlows recovers the realized power flows of the transition
// from state to nextState under the argument (already clamped) action.
//
// The realized battery power is recovered from the SoC transition
// itself rather than from the commanded power, so that any feasibility
// truncation applied by the battery is automatically reflected in the
// flows, and therefore in the reward.
func realizedFlows(state, action, nextState *mat.VecDense,
	battery BatteryConfig, grid GridConfig, dt float64) Flows {

	solar := state.AtVec(IndexSolar)
	demand := state.AtVec(IndexDemand)
	soc := state.AtVec(IndexSoC)
	nextSoC := nextState.AtVec(IndexSoC)

	curtailment := action.AtVec(ActionCurtailment)
	exportFraction := action.AtVec(ActionGridExport)

	generation := solar * (1 - curtailment)
	curtailed := solar * curtailment

	// Stored energy delta over the interval determines the realized
	// bus-side battery power
	stored := (nextSoC - soc) * battery.Capacity
	var batteryFlow float64
	switch {
	case stored > 0: // Charged: bus supplied stored/η
		batteryFlow = -stored / battery.Efficiency / dt
	case stored < 0: // Discharged: bus received -stored·η
		batteryFlow = -stored * battery.Efficiency / dt
	}

	netLoad := demand - generation
	gridFlow := netLoad - batteryFlow

	flows := Flows{
		Generation: generation,
		Curtailed:  curtailed,
		Battery:    batteryFlow,
		PriceBuy:   state.AtVec(IndexPriceBuy),
		PriceSell:  state.AtVec(IndexPriceSell),
		Dt:         dt,
	}

	if gridFlow > 0 {
		// Deficit: import up to the grid capacity, the rest is unmet
		flows.GridImport = math.Min(gridFlow, grid.MaxImport)
		flows.Unmet = gridFlow - flows.GridImport
	} else if gridFlow < 0 {
		// Surplus: export the commanded fraction up to the grid
		// capacity, spill the rest
		surplus := -gridFlow
		flows.GridExport = math.Min(surplus*exportFraction, grid.MaxExport)
		flows.Spilled = surplus - flows.GridExport
	}

	return flows
}
