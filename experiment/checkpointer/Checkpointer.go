// Package checkpointer implements periodic saving of serializable
// objects, usually agents, during an experiment
package checkpointer

// Serializable is an object that can save itself to a named file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer saves serializable objects at episode boundaries. The
// experiment calls Checkpoint once at the end of every episode with
// the finished episode's index; the Checkpointer decides whether that
// episode warrants a save.
type Checkpointer interface {
	Checkpoint(episode int) error
}
