package qlearning

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
)

// ErrSnapshotIncompatible is returned by Restore when the snapshot was
// taken under a different state discretization or action space than the
// restoring agent's. Value-table keys are only meaningful relative to
// their discretization, so restoring across discretizations would
// silently misinterpret every key; the restore fails instead.
var ErrSnapshotIncompatible = errors.New("snapshot incompatible with " +
	"agent configuration")

// snapshot is the on-disk representation of a QLearning agent's learned
// state and hyperparameters
type snapshot struct {
	Fingerprint  string // State grid configuration
	NumActions   int
	Epsilon      float64
	LearningRate float64
	Discount     float64
	Values       map[string][]float64
}

// Save writes the agent's value table and hyperparameters to the
// argument file
func (q *QLearning) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create snapshot file: %v", err)
	}
	defer file.Close()

	s := snapshot{
		Fingerprint:  q.states.Fingerprint(),
		NumActions:   q.table.NumActions(),
		Epsilon:      q.behaviour.Epsilon(),
		LearningRate: q.learningRate,
		Discount:     q.discount,
		Values:       q.table.Values(),
	}

	if err := gob.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("save: could not encode snapshot: %v", err)
	}
	return nil
}

// Restore replaces the agent's value table and exploration rate with
// those of the snapshot in the argument file. The snapshot must have
// been taken under the same state discretization and action space;
// otherwise Restore returns ErrSnapshotIncompatible and the agent is
// left unchanged.
func (q *QLearning) Restore(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("restore: could not open snapshot file: %v", err)
	}
	defer file.Close()

	var s snapshot
	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return fmt.Errorf("restore: could not decode snapshot: %v", err)
	}

	if s.Fingerprint != q.states.Fingerprint() {
		return fmt.Errorf("restore: %w: snapshot discretization %q, agent "+
			"discretization %q", ErrSnapshotIncompatible, s.Fingerprint,
			q.states.Fingerprint())
	}
	if s.NumActions != q.table.NumActions() {
		return fmt.Errorf("restore: %w: snapshot has %v actions, agent has "+
			"%v", ErrSnapshotIncompatible, s.NumActions,
			q.table.NumActions())
	}

	q.table.SetValues(s.Values)
	q.behaviour.SetEpsilon(s.Epsilon)
	return nil
}
