// Package geom provides the 2D primitives used by layout generation.
package geom

import "math"

// circumcircleEpsilon keeps the circumcircle determinant away from zero for
// nearly collinear triangles.
const circumcircleEpsilon = 1e-6

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Len returns the Euclidean norm of p.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return b.Sub(a).Len()
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Dimensions
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{r.X, r.Y}
}

// Center returns the center of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Contains returns true if the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects returns true if the two rectangles share a positive-area overlap.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W &&
		r.X+r.W > other.X &&
		r.Y < other.Y+other.H &&
		r.Y+r.H > other.Y
}

// Overlap returns the area shared by the two rectangles.
func (r Rect) Overlap(other Rect) float64 {
	w := math.Min(r.X+r.W, other.X+other.W) - math.Max(r.X, other.X)
	h := math.Min(r.Y+r.H, other.Y+other.H) - math.Max(r.Y, other.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Translate returns the rectangle moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Triangle is three points in fixed slot order.
type Triangle struct {
	A, B, C Point
}

// Circle is a center and a radius.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies strictly inside the circle.
// A point exactly on the boundary is not contained.
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center, p) < c.Radius
}

// Circumcircle returns the circle through the three vertices of t.
//
// The triangle is translated so that B sits at the origin and the center is
// solved with the determinant method. The determinant carries a small additive
// bias, so nearly collinear input yields a very large circle instead of a
// division by zero.
func Circumcircle(t Triangle) Circle {
	a0 := t.A.X - t.B.X
	a1 := t.A.Y - t.B.Y
	c0 := t.C.X - t.B.X
	c1 := t.C.Y - t.B.Y
	det := 0.5 / (a0*c1 - c0*a1 + circumcircleEpsilon)

	asq := a0*a0 + a1*a1
	csq := c0*c0 + c1*c1
	ctr0 := det * (asq*c1 - csq*a1)
	ctr1 := det * (csq*a0 - asq*c0)

	return Circle{
		Center: Point{ctr0 + t.B.X, ctr1 + t.B.Y},
		Radius: math.Hypot(ctr0, ctr1),
	}
}
