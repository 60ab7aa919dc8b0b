// Package tracker defines Trackers, which cache data generated during
// an experiment and save it to disk after the experiment has finished
package tracker

import (
	"encoding/gob"
	"log"
	"os"

	ts "sfneuman.com/gridlearn/timestep"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished. Experiments send every environmental
// timestep to each registered Tracker through Track(); each Tracker
// decides which data from the timestep it caches.
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData loads and returns the float64 data saved by a Tracker
func LoadData(filename string) []float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64

	if err := dec.Decode(&data); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}
