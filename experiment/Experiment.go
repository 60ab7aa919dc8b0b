// Package experiment implements functionality for running an experiment
package experiment

import (
	"sfneuman.com/gridlearn/experiment/tracker"
)

// Report summarizes a single finished training episode. Reports are
// returned to the caller, who decides how to surface them (log record,
// file, dashboard).
type Report struct {
	Episode  int     // Episode index, starting at 0
	Return   float64 // Cumulative reward over the episode
	FinalSoC float64 // Battery state of charge at episode end
	Steps    int     // Steps taken before the episode ended
}

// Experiment outlines structs that can run experiments. Experiments
// track environment TimeSteps, caching each TimeStep's data in
// registered Trackers; Save() then writes all cached data to disk,
// usually after the experiment has finished. Run() drives all episodes
// and returns their Reports; RunEpisode() runs a single episode.
//
// A failure inside an episode aborts that episode only: Run() logs the
// cause and proceeds to the next episode.
type Experiment interface {
	Run() []Report
	RunEpisode(episode int) (Report, error)

	// Register adds a tracker.Tracker to the (possibly already
	// running) experiment. Useful to start tracking data only after a
	// specified event.
	Register(t tracker.Tracker)

	// Save all tracked data to disk
	Save()
}
