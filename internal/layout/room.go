package layout

import "github.com/samdwyer/dungeonlayout/internal/geom"

// Kind is the classification label of a room.
type Kind int

const (
	// KindUnclassified is every room before the classify phase.
	KindUnclassified Kind = iota
	// KindMajor rooms meet the inflated mean size on both axes.
	KindMajor
	// KindMinor rooms are everything else.
	KindMinor
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindUnclassified:
		return "unclassified"
	case KindMajor:
		return "major"
	case KindMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// Room is a rectangle plus the presentation attributes that travel with it.
type Room struct {
	geom.Rect
	Fill    Color
	Outline Color
	Kind    Kind
}
