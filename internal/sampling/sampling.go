// Package sampling draws the random positions, sizes and colors used when
// scattering rooms.
package sampling

import (
	"math"
	"math/rand"
	"time"

	"github.com/samdwyer/dungeonlayout/internal/geom"
)

// MaxColor is the largest packed 0xRRGGBB value.
const MaxColor = 0xFFFFFF

// Sampler is the source of randomness consumed by the layout pipeline.
type Sampler interface {
	// PointInDisc returns a point inside the ellipse with radii rx and ry.
	PointInDisc(rx, ry float64) geom.Point
	// JitteredSize returns a width and height drawn from independent normals.
	JitteredSize(meanW, meanH, stdDevW, stdDevH float64) (w, h float64)
	// Color returns a packed RGB value in [0, MaxColor].
	Color() uint32
}

// Random is a Sampler backed by an owned pseudorandom generator.
// It is not safe for concurrent use.
type Random struct {
	rng *rand.Rand
}

// New creates a Random seeded with seed. A seed of 0 seeds from the clock.
func New(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewFromRand(rand.New(rand.NewSource(seed)))
}

// NewFromRand wraps an existing generator.
func NewFromRand(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// PointInDisc draws the angle as 2π times a standard normal sample and the
// radius fraction uniformly in [-1, 1]. The normal angle is not uniform on the
// circle; it gives the scatter its clustered shape.
func (r *Random) PointInDisc(rx, ry float64) geom.Point {
	theta := 2 * math.Pi * r.rng.NormFloat64()
	rho := r.uniform()
	return geom.Point{
		X: rx * rho * math.Cos(theta),
		Y: ry * rho * math.Sin(theta),
	}
}

// JitteredSize draws width and height independently.
func (r *Random) JitteredSize(meanW, meanH, stdDevW, stdDevH float64) (float64, float64) {
	w := meanW + stdDevW*r.rng.NormFloat64()
	h := meanH + stdDevH*r.rng.NormFloat64()
	return w, h
}

// Color draws a packed RGB value uniformly.
func (r *Random) Color() uint32 {
	return uint32(r.rng.Int63n(MaxColor + 1))
}

// uniform returns a value in [-1, 1].
func (r *Random) uniform() float64 {
	return math.Nextafter(1, 2)*2*r.rng.Float64() - 1
}
