// Package layout scatters rooms around an origin and relaxes them into a
// non-overlapping, grid-aligned dungeon layout.
package layout

// Phase is the stage of the layout pipeline. Phases only move forward.
type Phase int

const (
	// PhaseScatter adds one room per step until the target count is reached.
	PhaseScatter Phase = iota
	// PhaseMerge propagates colors between overlapping rooms once.
	PhaseMerge
	// PhaseSeparate runs one relaxation pass per step until nothing moves.
	PhaseSeparate
	// PhaseClassify aligns, labels and connects the rooms once.
	PhaseClassify
	// PhaseDone is terminal; the room set no longer changes.
	PhaseDone
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseScatter:
		return "scatter"
	case PhaseMerge:
		return "merge"
	case PhaseSeparate:
		return "separate"
	case PhaseClassify:
		return "classify"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
