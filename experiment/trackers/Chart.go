package trackers

import (
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"sfneuman.com/gridlearn/experiment/tracker"
	ts "sfneuman.com/gridlearn/timestep"
)

// Chart tracks the episodic return in an experiment and saves it as an
// HTML line chart, for offline inspection of convergence. The chart is
// written to a file; nothing is served or displayed.
type Chart struct {
	title          string
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewChart creates and returns a new *Chart Tracker which renders the
// chart with the argument title to the argument HTML file
func NewChart(title, filename string) tracker.Tracker {
	return &Chart{title: title, filename: filename}
}

// Track accumulates the return of the current episode, caching it when
// the episode's last timestep is seen. A first timestep clears any
// partial sum left behind by an aborted episode.
func (c *Chart) Track(step ts.TimeStep) {
	if step.First() {
		c.currentReturn = 0.0
	}
	c.currentReturn += step.Reward

	if step.Last() {
		c.episodeReturns = append(c.episodeReturns, c.currentReturn)
		c.currentReturn = 0.0
	}
}

// Save renders the cached episodic returns as an HTML line chart
func (c *Chart) Save() {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: c.title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, len(c.episodeReturns))
	items := make([]opts.LineData, len(c.episodeReturns))
	for i, ret := range c.episodeReturns {
		episodes[i] = fmt.Sprintf("%d", i)
		items[i] = opts.LineData{Value: ret}
	}

	line.SetXAxis(episodes)
	line.AddSeries("return", items)

	page := components.NewPage()
	page.AddCharts(line)

	file, err := os.Create(c.filename)
	if err != nil {
		log.Fatalf("could not create chart file: %v", err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		log.Fatalf("could not render chart: %v", err)
	}
}
