// Package feed provides time-indexed telemetry feeds that microgrid
// environments consume sequentially, one sample per environmental step.
//
// Feeds are always fully local: a Feed never performs network I/O. Data
// fetched from external services (weather, prices) must be materialized
// into a Records feed before being handed to an environment.
package feed

import (
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned by Next() when a feed has no more samples.
// Environments treat exhaustion as the end of the current episode, not
// as a fatal error.
var ErrExhausted = errors.New("feed exhausted")

// Sample is a single time-indexed telemetry record. Power values are in
// kW, irradiance in W/m², temperature in °C, and prices in currency
// per kWh. Health indicators are fractions in [0, 1].
//
// A NaN price marks an interval carrying no price signal; environments
// substitute their configured fallback. A zero price is a real price.
type Sample struct {
	Solar         float64
	Demand        float64
	Temperature   float64
	Irradiance    float64
	PriceBuy      float64
	PriceSell     float64
	BatteryHealth float64
	SolarHealth   float64
	Timestamp     time.Time
}

// Feed is a sequential source of telemetry samples. Next() returns
// ErrExhausted once all samples have been consumed. Reset() rewinds the
// feed to its beginning; for stochastic feeds, Reset() also restores
// the generator to its seeded starting state so that repeated passes
// over the feed produce identical samples.
type Feed interface {
	Next() (Sample, error)
	Reset() error
	Len() int
}

// Records is a Feed backed by an in-memory slice of samples
type Records struct {
	samples []Sample
	next    int
}

// NewRecords returns a feed that replays the argument samples in order
func NewRecords(samples []Sample) (*Records, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("newRecords: no samples")
	}
	return &Records{samples: samples}, nil
}

// Next returns the next sample in the feed
func (r *Records) Next() (Sample, error) {
	if r.next >= len(r.samples) {
		return Sample{}, ErrExhausted
	}
	sample := r.samples[r.next]
	r.next++
	return sample, nil
}

// Reset rewinds the feed to its first sample
func (r *Records) Reset() error {
	r.next = 0
	return nil
}

// Len returns the total number of samples in the feed
func (r *Records) Len() int {
	return len(r.samples)
}
