package main

import (
	"fmt"
	"time"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/spatial/r1"

	"sfneuman.com/gridlearn/agent/tabular/qlearning"
	"sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/environment/microgrid"
	"sfneuman.com/gridlearn/environment/wrappers"
	"sfneuman.com/gridlearn/experiment"
	"sfneuman.com/gridlearn/experiment/checkpointer"
	"sfneuman.com/gridlearn/experiment/tracker"
	"sfneuman.com/gridlearn/experiment/trackers"
	"sfneuman.com/gridlearn/feed"
)

func main() {
	var seed uint64 = 192382

	// A week of synthetic site telemetry at hourly resolution
	telemetry, err := feed.NewSynthetic(feed.SyntheticConfig{
		SolarCapacity: 50,
		DemandBase:    10,
		DemandPeak:    25,
		PriceBase:     0.12,
		PriceSwing:    0.05,
		SellRatio:     0.6,
		Latitude:      22.0,
		Start:         time.Date(2021, time.June, 7, 0, 0, 0, 0, time.UTC),
		Interval:      time.Hour,
		Horizon:       24 * 7,
	}, seed)
	if err != nil {
		panic(err)
	}

	// Physical configuration of the site
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

	// Dispatch task: mostly economic, with some weight on keeping the
	// battery healthy and the lights on
	weights := microgrid.Weights{
		Economic:       0.5,
		Sustainability: 0.2,
		Reliability:    0.2,
		Health:         0.1,
	}
	starter := environment.NewUniformStarter([]r1.Interval{
		{Min: config.Battery.InitialSoC, Max: config.Battery.InitialSoC},
	}, seed)
	task, err := microgrid.NewDispatch(starter, 24*7, weights,
		config.Battery, config.Grid, config.Dt)
	if err != nil {
		panic(err)
	}

	grid, err := microgrid.New(task, telemetry, config, 0.95)
	if err != nil {
		panic(err)
	}

	// Discretize the 3 continuous action dimensions into 5 x 3 x 2
	// bins = 30 discrete actions
	env, err := wrappers.NewDiscreteAction(grid, []int{5, 3, 2})
	if err != nil {
		panic(err)
	}

	agentConfig := qlearning.Config{
		Epsilon:      0.3,
		EpsilonDecay: 0.99,
		EpsilonMin:   0.05,
		LearningRate: 0.1,
		Discount:     0.95,
		StateBins:    []int{4, 4, 10, 1, 1, 6, 1, 3, 1, 1, 1},
		StateLower:   []float64{0, 0, 0, -40, 0, 0, 0, 0, 0, 0, 0},
		StateUpper:   []float64{60, 60, 1, 60, 1500, 24, 7, 0.3, 0.3, 1, 1},
	}
	q, err := qlearning.New(env, agentConfig, seed)
	if err != nil {
		panic(err)
	}

	returns := trackers.NewReturn("./returns.bin")
	lengths := trackers.NewEpisodeLength("./lengths.bin")
	chart := trackers.NewChart("Microgrid dispatch training",
		"./returns.html")
	check := checkpointer.NewNEpisode(50, q,
		checkpointer.FixedFile("./agent.bin"))

	e := experiment.NewOnline(env, q, 500, 24*7, microgrid.IndexSoC,
		[]tracker.Tracker{returns, lengths, chart},
		[]checkpointer.Checkpointer{check})
	e.ShowProgress()

	reports := e.Run()
	e.Save()

	// Aborted episodes and the stop condition can leave fewer than 10
	// reports
	tail := len(reports) - 10
	if tail < 0 {
		tail = 0
	}
	for _, r := range reports[tail:] {
		line := fmt.Sprintf("episode %3d  |  return %8.2f  |  "+
			"final SoC %.2f  |  steps %d", r.Episode, r.Return, r.FinalSoC,
			r.Steps)
		if r.Return >= 0 {
			fmt.Println(aurora.Green(line))
		} else {
			fmt.Println(aurora.Blue(line))
		}
	}
	fmt.Printf("visited states: %v  |  final epsilon: %.3f\n",
		q.Table().States(), q.Epsilon())
}
