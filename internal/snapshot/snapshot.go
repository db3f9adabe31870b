// Package snapshot captures the state of a layout pipeline in a form that
// renderers, exporters and the websocket stream share.
package snapshot

import (
	"encoding/json"

	"github.com/samdwyer/dungeonlayout/internal/geom"
	"github.com/samdwyer/dungeonlayout/internal/layout"
)

// Point is a JSON-friendly position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Room is one room as a renderer sees it.
type Room struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	Fill    string  `json:"fill"`
	Outline string  `json:"outline,omitempty"`
	Kind    string  `json:"kind"`
}

// Triangle is a triangle of the connectivity graph.
type Triangle struct {
	A Point `json:"a"`
	B Point `json:"b"`
	C Point `json:"c"`
}

// Circle is a triangle's circumcircle.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Edge joins two graph vertices. From and To are the room indices the
// vertices came from.
type Edge struct {
	A    int `json:"a"`
	B    int `json:"b"`
	From int `json:"from"`
	To   int `json:"to"`
}

// Snapshot is a read-only view of a pipeline at one instant.
type Snapshot struct {
	RunID   string  `json:"run_id"`
	Seed    int64   `json:"seed"`
	Phase   string  `json:"phase"`
	Done    bool    `json:"done"`
	Passes  int     `json:"passes"`
	MeanW   float64 `json:"mean_w"`
	MeanH   float64 `json:"mean_h"`
	Overlap float64 `json:"overlap"`
	Error   string  `json:"error,omitempty"`

	Rooms         []Room     `json:"rooms"`
	Vertices      []Point    `json:"vertices,omitempty"`
	Triangles     []Triangle `json:"triangles,omitempty"`
	Circumcircles []Circle   `json:"circumcircles,omitempty"`
	Edges         []Edge     `json:"edges,omitempty"`
}

// Take copies the pipeline's current state.
func Take(p *layout.Pipeline) Snapshot {
	meanW, meanH := p.Means()
	s := Snapshot{
		RunID:   p.RunID(),
		Seed:    p.Config().Seed,
		Phase:   p.Phase().String(),
		Done:    p.Done(),
		Passes:  p.Passes(),
		MeanW:   meanW,
		MeanH:   meanH,
		Overlap: p.OverlapArea(),
	}
	if err := p.Err(); err != nil {
		s.Error = err.Error()
	}

	rooms := p.Rooms()
	s.Rooms = make([]Room, len(rooms))
	for i, r := range rooms {
		s.Rooms[i] = Room{
			X:    r.X,
			Y:    r.Y,
			W:    r.W,
			H:    r.H,
			Fill: r.Fill.Hex(),
			Kind: r.Kind.String(),
		}
		if r.Kind != layout.KindUnclassified {
			s.Rooms[i].Outline = r.Outline.Hex()
		}
	}

	g := p.Graph()
	if g == nil {
		return s
	}
	for _, v := range g.Vertices() {
		s.Vertices = append(s.Vertices, point(v))
	}
	for _, t := range g.Triangles() {
		s.Triangles = append(s.Triangles, Triangle{A: point(t.A), B: point(t.B), C: point(t.C)})
	}
	for _, c := range g.Circumcircles() {
		s.Circumcircles = append(s.Circumcircles, Circle{Center: point(c.Center), Radius: c.Radius})
	}
	owners := p.GraphRooms()
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{A: e.A, B: e.B, From: owners[e.A], To: owners[e.B]})
	}
	return s
}

// Rects returns the room rectangles in room order.
func (s Snapshot) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(s.Rooms))
	for i, r := range s.Rooms {
		rects[i] = geom.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}
	return rects
}

// MajorCount returns how many rooms are classified major.
func (s Snapshot) MajorCount() int {
	n := 0
	for _, r := range s.Rooms {
		if r.Kind == layout.KindMajor.String() {
			n++
		}
	}
	return n
}

// JSON encodes the snapshot.
func (s Snapshot) JSON() ([]byte, error) {
	return json.Marshal(s)
}

func point(p geom.Point) Point {
	return Point{X: p.X, Y: p.Y}
}
