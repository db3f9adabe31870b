// Package grid snaps layout coordinates to a fixed-size grid.
package grid

import (
	"math"

	"github.com/samdwyer/dungeonlayout/internal/geom"
)

// DefaultStep is the grid cell size used when none is configured.
const DefaultStep = 8

// margin is how far AlignedBounds pushes each edge outward.
const margin = 1

// AlignValue snaps v to a multiple of step after adding step-1. Whole
// numbers round up to the next grid line; a fraction less than one unit past
// a grid line stays on it.
func AlignValue(v, step float64) float64 {
	return math.Floor((v+step-1)/step) * step
}

// Align snaps both coordinates of p.
func Align(p geom.Point, step float64) geom.Point {
	return geom.Point{X: AlignValue(p.X, step), Y: AlignValue(p.Y, step)}
}

// AlignRect snaps the origin and size of r.
func AlignRect(r geom.Rect, step float64) geom.Rect {
	return geom.Rect{
		X: AlignValue(r.X, step),
		Y: AlignValue(r.Y, step),
		W: AlignValue(r.W, step),
		H: AlignValue(r.H, step),
	}
}

// AlignedBounds grows r by one unit on every side and snaps the new top-left
// corner. Rooms that would sit on adjacent grid lines still overlap under
// these bounds, so separation keeps a gap between them.
func AlignedBounds(r geom.Rect, step float64) geom.Rect {
	origin := Align(geom.Point{X: r.X - margin, Y: r.Y - margin}, step)
	return geom.Rect{
		X: origin.X,
		Y: origin.Y,
		W: r.W + 2*margin,
		H: r.H + 2*margin,
	}
}
