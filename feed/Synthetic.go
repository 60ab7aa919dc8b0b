package feed

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"sfneuman.com/gridlearn/utils/floatutils"
)

// SyntheticConfig configures a Synthetic feed. All power capacities are
// in kW and prices in currency per kWh.
type SyntheticConfig struct {
	SolarCapacity float64   // Peak solar generation
	DemandBase    float64   // Overnight demand floor
	DemandPeak    float64   // Additional daytime demand
	PriceBase     float64   // Mean buy price
	PriceSwing    float64   // Amplitude of the daily price cycle
	SellRatio     float64   // Sell price as a fraction of buy price
	Latitude      float64   // Site latitude in degrees, for solar elevation
	Start         time.Time // Timestamp of the first sample
	Interval      time.Duration
	Horizon       int // Number of samples the feed produces per pass
}

// Validate returns an error describing the first invalid field of the
// configuration, or nil if the configuration is valid
func (c SyntheticConfig) Validate() error {
	if c.SolarCapacity < 0 {
		return fmt.Errorf("solar capacity cannot be negative")
	}
	if c.DemandBase < 0 || c.DemandPeak < 0 {
		return fmt.Errorf("demand cannot be negative")
	}
	if c.PriceBase < 0 || c.PriceSwing < 0 {
		return fmt.Errorf("prices cannot be negative")
	}
	if c.SellRatio < 0 || c.SellRatio > 1 {
		return fmt.Errorf("sell ratio %v ∉ [0, 1]", c.SellRatio)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive")
	}
	return nil
}

// Synthetic generates telemetry samples from a simplified physical
// model of a site: solar generation follows the solar elevation angle
// with random cloud cover, demand follows a day/night cycle, and prices
// follow demand. Samples are generated from a seeded source, and
// Reset() restores the source so that every pass over the feed yields
// identical samples.
type Synthetic struct {
	config SyntheticConfig
	seed   uint64
	cloud  distuv.Uniform
	noise  distuv.Uniform
	next   int
}

// NewSynthetic returns a new seeded synthetic feed
func NewSynthetic(config SyntheticConfig, seed uint64) (*Synthetic, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newSynthetic: %v", err)
	}

	s := &Synthetic{config: config, seed: seed}
	s.reseed()
	return s, nil
}

// reseed restores the random sources to their seeded starting state
func (s *Synthetic) reseed() {
	s.cloud = distuv.Uniform{
		Min: 0.3, Max: 1.0,
		Src: rand.NewSource(s.seed),
	}
	s.noise = distuv.Uniform{
		Min: -1.0, Max: 1.0,
		Src: rand.NewSource(s.seed + 1),
	}
}

// Next generates and returns the next sample
func (s *Synthetic) Next() (Sample, error) {
	if s.next >= s.config.Horizon {
		return Sample{}, ErrExhausted
	}

	when := s.config.Start.Add(time.Duration(s.next) * s.config.Interval)
	hour := float64(when.Hour()) + float64(when.Minute())/60
	day := when.YearDay()

	// Solar elevation determines clear-sky irradiance; cloud cover
	// scales it down.
	elevation := solarElevation(hour, day, s.config.Latitude)
	irradiance := math.Max(0, 1000*math.Sin(elevation*math.Pi/180))
	irradiance *= s.cloud.Rand()

	solar := s.config.SolarCapacity * irradiance / 1000

	temperature := 25 + 10*math.Sin(2*math.Pi*hour/24) + 2.5*s.noise.Rand()

	// Demand peaks during the day and sits at the base level overnight
	demand := s.config.DemandBase
	if hour >= 6 && hour <= 22 {
		demand += s.config.DemandPeak *
			math.Sin(math.Pi*(hour-6)/16) * (1 + 0.1*s.noise.Rand())
	}
	demand = math.Max(0, demand)

	// Prices follow the daily demand cycle
	buy := s.config.PriceBase +
		s.config.PriceSwing*math.Sin(2*math.Pi*(hour-6)/24)
	buy = math.Max(0, buy+0.02*s.noise.Rand()*s.config.PriceBase)
	sell := buy * s.config.SellRatio

	// Health indicators degrade slowly with temperature excursions
	solarHealth := 1 - 0.2*math.Max(0, (temperature-25)/30)
	batteryHealth := 1 - 0.3*math.Max(0, (temperature-25)/20)

	s.next++
	return Sample{
		Solar:         solar,
		Demand:        demand,
		Temperature:   temperature,
		Irradiance:    irradiance,
		PriceBuy:      buy,
		PriceSell:     sell,
		BatteryHealth: floatutils.Clip(batteryHealth, 0, 1),
		SolarHealth:   floatutils.Clip(solarHealth, 0, 1),
		Timestamp:     when,
	}, nil
}

// Reset rewinds the feed and restores the seeded random sources so that
// the next pass reproduces the previous one exactly
func (s *Synthetic) Reset() error {
	s.next = 0
	s.reseed()
	return nil
}

// Len returns the number of samples the feed produces per pass
func (s *Synthetic) Len() int {
	return s.config.Horizon
}

// solarElevation computes a simplified solar elevation angle in degrees
// for the argument hour of day, day of year, and latitude
func solarElevation(hour float64, day int, latitude float64) float64 {
	hourAngle := (hour - 12) * 15
	declination := 23.45 *
		math.Sin(2*math.Pi*float64(284+day)/365)

	toRad := math.Pi / 180
	elevation := math.Asin(
		math.Sin(declination*toRad)*math.Sin(latitude*toRad)+
			math.Cos(declination*toRad)*math.Cos(latitude*toRad)*
				math.Cos(hourAngle*toRad)) / toRad

	return math.Max(0, elevation)
}
