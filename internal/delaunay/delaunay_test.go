package delaunay

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/geom"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateBootstrapped, "bootstrapped"},
		{StateBuilding, "building"},
		{StateFinalized, "finalized"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestNewBootstrapsSuperTriangle(t *testing.T) {
	g, err := New(100, 50)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.State() != StateBootstrapped {
		t.Errorf("State() = %v, want bootstrapped", g.State())
	}
	if n := len(g.Vertices()); n != 3 {
		t.Errorf("len(Vertices()) = %d, want 3", n)
	}
	if n := len(g.Triangles()); n != 1 {
		t.Errorf("len(Triangles()) = %d, want 1", n)
	}

	// Every corner of the working box is enclosed.
	for _, p := range []geom.Point{{X: 100, Y: 50}, {X: -100, Y: 50}, {X: 100, Y: -50}, {X: -100, Y: -50}} {
		if !g.insideSuper(p) {
			t.Errorf("corner %v is outside the super-triangle", p)
		}
	}
}

func TestNewRejectsBadExtents(t *testing.T) {
	for _, tc := range [][2]float64{{0, 10}, {10, 0}, {-1, 5}, {math.NaN(), 1}} {
		if _, err := New(tc[0], tc[1]); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("New(%v, %v) error = %v, want INVALID_INPUT", tc[0], tc[1], err)
		}
	}
}

func TestThreePointsYieldOneTriangle(t *testing.T) {
	g, err := New(100, 100)
	if err != nil {
		t.Fatal(err)
	}

	points := []geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 10, Y: 30}}
	for _, p := range points {
		if err := g.Insert(p); err != nil {
			t.Fatalf("Insert(%v) error = %v", p, err)
		}
	}
	if g.State() != StateBuilding {
		t.Errorf("State() = %v, want building", g.State())
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tris := g.Triangles()
	if len(tris) != 1 {
		t.Fatalf("len(Triangles()) = %d, want 1", len(tris))
	}
	got := []geom.Point{tris[0].A, tris[0].B, tris[0].C}
	for _, p := range points {
		if !slices.Contains(got, p) {
			t.Errorf("triangle %v is missing vertex %v", tris[0], p)
		}
	}

	verts := g.Vertices()
	if !slices.Equal(verts, points) {
		t.Errorf("Vertices() = %v, want %v", verts, points)
	}

	adj := g.Adjacency()
	want := map[int][]int{0: {1, 2}, 1: {0, 2}, 2: {0, 1}}
	for k, v := range want {
		if !slices.Equal(adj[k], v) {
			t.Errorf("Adjacency()[%d] = %v, want %v", k, adj[k], v)
		}
	}
	if edges := g.Edges(); len(edges) != 3 {
		t.Errorf("len(Edges()) = %d, want 3", len(edges))
	}
}

func TestSquareYieldsTwoTriangles(t *testing.T) {
	g, _ := New(50, 50)
	for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 1}, {X: 21, Y: 21}, {X: 1, Y: 20}} {
		if err := g.Insert(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	if n := len(g.Triangles()); n != 2 {
		t.Errorf("len(Triangles()) = %d, want 2", n)
	}
	if n := len(g.Edges()); n != 5 {
		t.Errorf("len(Edges()) = %d, want 5", n)
	}
}

func TestEmptyCircumcircleProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	g, _ := New(100, 100)

	for i := 0; i < 60; i++ {
		p := geom.Point{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		if err := g.Insert(p); err != nil {
			t.Fatalf("Insert(%v) error = %v", p, err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}

	verts := g.Vertices()
	if len(verts) != 60 {
		t.Fatalf("len(Vertices()) = %d, want 60", len(verts))
	}
	tris := g.Triangles()
	if len(tris) == 0 {
		t.Fatal("no triangles after finalize")
	}

	circles := g.Circumcircles()
	for i, tri := range tris {
		c := circles[i]
		for _, v := range verts {
			if v == tri.A || v == tri.B || v == tri.C {
				continue
			}
			if geom.Distance(c.Center, v) < c.Radius*(1-1e-9) {
				t.Fatalf("vertex %v inside circumcircle of %v", v, tri)
			}
		}
	}

	// Every triangle vertex comes from the vertex list.
	for _, tri := range tris {
		for _, p := range []geom.Point{tri.A, tri.B, tri.C} {
			if !slices.Contains(verts, p) {
				t.Fatalf("triangle vertex %v not in vertex list", p)
			}
		}
	}
}

func TestAdjacencySymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	g, _ := New(50, 50)
	for i := 0; i < 25; i++ {
		_ = g.Insert(geom.Point{X: rng.Float64()*100 - 50, Y: rng.Float64()*100 - 50})
	}
	if g.Adjacency() != nil {
		t.Error("Adjacency() should be nil before Finalize")
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}

	adj := g.Adjacency()
	for v, neighbors := range adj {
		for _, n := range neighbors {
			if n == v {
				t.Errorf("vertex %d lists itself as neighbor", v)
			}
			if !slices.Contains(adj[n], v) {
				t.Errorf("edge %d-%d is not symmetric", v, n)
			}
		}
	}
	if len(adj) != 25 {
		t.Errorf("len(Adjacency()) = %d, want 25", len(adj))
	}
}

func TestInsertErrors(t *testing.T) {
	g, _ := New(10, 10)
	if err := g.Insert(geom.Point{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}

	before := len(g.Triangles())
	if err := g.Insert(geom.Point{X: 1, Y: 1}); !errors.Is(err, errors.ErrCodeDuplicateVertex) {
		t.Errorf("duplicate Insert error = %v, want DUPLICATE_VERTEX", err)
	}
	if after := len(g.Triangles()); after != before {
		t.Errorf("duplicate Insert changed triangle count %d -> %d", before, after)
	}

	if err := g.Insert(geom.Point{X: 1e6, Y: 0}); !errors.Is(err, errors.ErrCodeOutOfBounds) {
		t.Errorf("far Insert error = %v, want OUT_OF_BOUNDS", err)
	}

	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := g.Insert(geom.Point{X: 2, Y: 2}); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Insert after Finalize error = %v, want INVALID_STATE", err)
	}
	if err := g.Finalize(); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("second Finalize error = %v, want INVALID_STATE", err)
	}

	var zero Graph
	if err := zero.Insert(geom.Point{}); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Insert on zero Graph error = %v, want INVALID_STATE", err)
	}
}

func TestFinalizeWithoutVertices(t *testing.T) {
	g, _ := New(10, 10)
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	if len(g.Vertices()) != 0 || len(g.Triangles()) != 0 {
		t.Errorf("empty graph kept %d vertices and %d triangles", len(g.Vertices()), len(g.Triangles()))
	}
}
