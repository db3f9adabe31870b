// Package delaunay builds a Delaunay triangulation incrementally with the
// Bowyer–Watson algorithm.
//
// A Graph starts from a super-triangle that encloses the working area. Each
// Insert removes the triangles whose circumcircle contains the new point and
// re-triangulates the cavity from its boundary edges. Finalize drops the
// super-triangle and derives the vertex adjacency.
//
// Triangles refer to vertices by index, so removing and appending triangles
// during an insertion never invalidates the vertex list.
package delaunay

import (
	"slices"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/geom"
)

// superVertices is the number of bootstrap vertices at the head of the list.
const superVertices = 3

// superScale enlarges the bootstrap triangle. The unscaled shape
// (0,2h) (-2w,-2h) (2w,-2h) leaves the corners of the ±w×±h box outside, and
// a larger triangle keeps its far vertices out of real circumcircles.
const superScale = 8

// State is the construction stage of a Graph.
type State int

const (
	// StateUninitialized is the zero Graph, before New.
	StateUninitialized State = iota
	// StateBootstrapped holds only the super-triangle.
	StateBootstrapped
	// StateBuilding has accepted at least one vertex.
	StateBuilding
	// StateFinalized has had the super-triangle removed.
	StateFinalized
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapped:
		return "bootstrapped"
	case StateBuilding:
		return "building"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// triangle holds three vertex indices.
type triangle struct {
	a, b, c int
}

func (t triangle) has(v int) bool {
	return t.a == v || t.b == v || t.c == v
}

// edge is an undirected pair of vertex indices.
type edge struct {
	a, b int
}

// key orders the endpoints so that (a,b) and (b,a) compare equal.
func (e edge) key() edge {
	if e.a > e.b {
		return edge{e.b, e.a}
	}
	return e
}

// Edge is an undirected connection between two vertices, by index.
type Edge struct {
	A, B int
}

// Graph is an incremental Delaunay triangulation. It is not safe for
// concurrent use; insertions depend on the previous triangle list.
type Graph struct {
	vertices  []geom.Point
	triangles []triangle
	adjacency map[int][]int
	state     State
}

// New bootstraps a graph whose super-triangle encloses every point in
// [-width, width] × [-height, height].
func New(width, height float64) (*Graph, error) {
	if !(width > 0) || !(height > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"super-triangle extents must be positive, got %gx%g", width, height)
	}

	w := superScale * width
	h := superScale * height
	a := geom.Point{X: 0, Y: 2 * h}
	b := geom.Point{X: -2 * w, Y: -2 * h}
	c := geom.Point{X: 2 * w, Y: -2 * h}

	return &Graph{
		vertices:  []geom.Point{a, b, c},
		triangles: []triangle{{0, 1, 2}},
		state:     StateBootstrapped,
	}, nil
}

// State returns the construction stage.
func (g *Graph) State() State {
	return g.state
}

// Insert adds p to the triangulation with one Bowyer–Watson step.
//
// Every triangle whose circumcircle strictly contains p is removed. The edges
// of the removed triangles that are not shared between two of them form the
// cavity boundary, and each boundary edge is joined to p. A point lying
// exactly on a circumcircle does not remove that triangle.
func (g *Graph) Insert(p geom.Point) error {
	if g.state != StateBootstrapped && g.state != StateBuilding {
		return errors.New(errors.ErrCodeInvalidState, "cannot insert vertex into %s graph", g.state)
	}
	for _, v := range g.vertices {
		if v == p {
			return errors.New(errors.ErrCodeDuplicateVertex, "vertex (%g, %g) already present", p.X, p.Y)
		}
	}
	if !g.insideSuper(p) {
		return errors.New(errors.ErrCodeOutOfBounds, "vertex (%g, %g) lies outside the super-triangle", p.X, p.Y)
	}

	var boundary []edge
	counts := make(map[edge]int)
	kept := g.triangles[:0:0]
	for _, t := range g.triangles {
		if !geom.Circumcircle(g.triangle(t)).Contains(p) {
			kept = append(kept, t)
			continue
		}
		for _, e := range []edge{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
			if counts[e.key()] == 0 {
				boundary = append(boundary, e)
			}
			counts[e.key()]++
		}
	}

	idx := len(g.vertices)
	g.vertices = append(g.vertices, p)
	for _, e := range boundary {
		if counts[e.key()] == 1 {
			kept = append(kept, triangle{e.a, e.b, idx})
		}
	}
	g.triangles = kept
	g.state = StateBuilding
	return nil
}

// Finalize removes the super-triangle vertices and every triangle touching
// them, renumbers the remaining vertices from zero and builds the adjacency.
func (g *Graph) Finalize() error {
	if g.state != StateBootstrapped && g.state != StateBuilding {
		return errors.New(errors.ErrCodeInvalidState, "cannot finalize %s graph", g.state)
	}

	kept := g.triangles[:0:0]
	for _, t := range g.triangles {
		if t.a < superVertices || t.b < superVertices || t.c < superVertices {
			continue
		}
		kept = append(kept, triangle{t.a - superVertices, t.b - superVertices, t.c - superVertices})
	}
	g.triangles = kept
	g.vertices = slices.Clone(g.vertices[superVertices:])
	g.adjacency = buildAdjacency(len(g.vertices), g.triangles)
	g.state = StateFinalized
	return nil
}

// Vertices returns a copy of the vertex list. Before Finalize the first three
// entries are the super-triangle corners.
func (g *Graph) Vertices() []geom.Point {
	return slices.Clone(g.vertices)
}

// Triangles returns the current triangles as points.
func (g *Graph) Triangles() []geom.Triangle {
	out := make([]geom.Triangle, len(g.triangles))
	for i, t := range g.triangles {
		out[i] = g.triangle(t)
	}
	return out
}

// Circumcircles returns the circumcircle of each triangle, in Triangles order.
func (g *Graph) Circumcircles() []geom.Circle {
	out := make([]geom.Circle, len(g.triangles))
	for i, t := range g.triangles {
		out[i] = geom.Circumcircle(g.triangle(t))
	}
	return out
}

// Edges returns every triangle edge once, ordered by (A, B) with A < B.
func (g *Graph) Edges() []Edge {
	seen := make(map[edge]bool)
	var out []Edge
	for _, t := range g.triangles {
		for _, e := range []edge{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
			k := e.key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, Edge{A: k.a, B: k.b})
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return out
}

// Adjacency maps each vertex index to its sorted neighbor indices. It is only
// populated once the graph is finalized; before that it returns nil.
func (g *Graph) Adjacency() map[int][]int {
	if g.adjacency == nil {
		return nil
	}
	out := make(map[int][]int, len(g.adjacency))
	for k, v := range g.adjacency {
		out[k] = slices.Clone(v)
	}
	return out
}

func (g *Graph) triangle(t triangle) geom.Triangle {
	return geom.Triangle{A: g.vertices[t.a], B: g.vertices[t.b], C: g.vertices[t.c]}
}

// insideSuper reports whether p lies strictly inside the bootstrap triangle.
func (g *Graph) insideSuper(p geom.Point) bool {
	a, b, c := g.vertices[0], g.vertices[1], g.vertices[2]
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	return (d1 > 0 && d2 > 0 && d3 > 0) || (d1 < 0 && d2 < 0 && d3 < 0)
}

func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func buildAdjacency(n int, triangles []triangle) map[int][]int {
	sets := make([]map[int]bool, n)
	for i := range sets {
		sets[i] = make(map[int]bool)
	}
	link := func(a, b int) {
		sets[a][b] = true
		sets[b][a] = true
	}
	for _, t := range triangles {
		link(t.a, t.b)
		link(t.b, t.c)
		link(t.c, t.a)
	}

	adj := make(map[int][]int, n)
	for i, set := range sets {
		neighbors := make([]int, 0, len(set))
		for j := range set {
			neighbors = append(neighbors, j)
		}
		slices.Sort(neighbors)
		adj[i] = neighbors
	}
	return adj
}
