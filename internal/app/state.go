// Package app runs the frame-driven terminal viewer.
package app

// State represents whether the viewer advances the pipeline on each frame.
type State int

const (
	// StateRunning steps the pipeline once per frame.
	StateRunning State = iota
	// StatePaused keeps drawing but stops stepping.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
