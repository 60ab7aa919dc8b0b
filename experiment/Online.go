package experiment

import (
	"fmt"
	"log"

	"sfneuman.com/gridlearn/agent"
	env "sfneuman.com/gridlearn/environment"
	"sfneuman.com/gridlearn/experiment/checkpointer"
	"sfneuman.com/gridlearn/experiment/tracker"
	ts "sfneuman.com/gridlearn/timestep"
	"sfneuman.com/gridlearn/utils/progressbar"
)

// Online is an Experiment that trains an agent online: episodes are
// run back to back on a single environment instance, and the agent
// updates from every transition as it happens. No offline evaluation
// is performed.
//
// Environment and agent calls are strictly sequential; nothing is
// shared across goroutines. Cancellation is cooperative at episode
// boundaries: the stop condition is checked between episodes only, so
// the current episode always completes or explicitly aborts on error.
type Online struct {
	environment   env.Environment
	agent         agent.Agent
	episodes      int
	maxSteps      int
	socIndex      int // Observation index of the state of charge
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	stop          func() bool
	progress      bool
}

// NewOnline creates and returns a new online experiment training the
// argument agent on the argument environment for episodes episodes of
// at most maxSteps steps each. The socIndex argument is the
// observation index from which each Report's FinalSoC is read.
func NewOnline(e env.Environment, a agent.Agent, episodes, maxSteps,
	socIndex int, t []tracker.Tracker,
	c []checkpointer.Checkpointer) *Online {
	return &Online{
		environment:   e,
		agent:         a,
		episodes:      episodes,
		maxSteps:      maxSteps,
		socIndex:      socIndex,
		trackers:      t,
		checkpointers: c,
	}
}

// Register registers a tracker.Tracker with the Experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// StopWhen installs a stop condition that is checked between episodes.
// When f returns true, Run() returns before starting the next episode.
func (o *Online) StopWhen(f func() bool) {
	o.stop = f
}

// ShowProgress enables a terminal progress bar across episodes
func (o *Online) ShowProgress() {
	o.progress = true
}

// RunEpisode runs the single episode with the argument index and
// returns its Report. An error from the environment or agent aborts
// the episode; the returned error describes the cause.
func (o *Online) RunEpisode(episode int) (Report, error) {
	step, err := o.environment.Reset()
	if err != nil {
		return Report{}, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return Report{}, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	episodeReturn := 0.0
	for !step.Last() && step.Number < o.maxSteps {
		action := o.agent.SelectAction(step)

		step, _, err = o.environment.Step(action)
		if err != nil {
			return Report{}, fmt.Errorf("runEpisode: step %v: %v",
				step.Number, err)
		}
		episodeReturn += step.Reward
		o.track(step)

		if err := o.agent.Observe(action, step); err != nil {
			return Report{}, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.agent.Step(); err != nil {
			return Report{}, fmt.Errorf("runEpisode: %v", err)
		}
	}

	o.agent.EndEpisode()
	o.checkpoint(episode)

	return Report{
		Episode:  episode,
		Return:   episodeReturn,
		FinalSoC: step.Observation.AtVec(o.socIndex),
		Steps:    step.Number,
	}, nil
}

// Run runs all episodes of the experiment and returns a Report per
// finished episode. A failed episode is logged and skipped; the stop
// condition, if any, is honoured between episodes.
func (o *Online) Run() []Report {
	var bar *progressbar.Bar
	if o.progress {
		bar = progressbar.New(25, o.episodes)
		bar.Display()
	}

	reports := make([]Report, 0, o.episodes)
	for episode := 0; episode < o.episodes; episode++ {
		if o.stop != nil && o.stop() {
			log.Printf("run: stop requested after %v episodes", episode)
			break
		}

		report, err := o.RunEpisode(episode)
		if err != nil {
			log.Printf("run: episode %v aborted: %v", episode, err)
		} else {
			reports = append(reports, report)
		}

		if bar != nil {
			bar.Increment()
			bar.Display()
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return reports
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, t := range o.trackers {
		t.Save()
	}
}

// track caches the current timestep's data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint offers the finished episode to each Checkpointer. A
// failed checkpoint is logged, not fatal.
func (o *Online) checkpoint(episode int) {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(episode); err != nil {
			log.Printf("checkpoint: episode %v: %v", episode, err)
		}
	}
}
