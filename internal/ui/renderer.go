package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeonlayout/internal/geom"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
	"github.com/samdwyer/dungeonlayout/internal/tilemap"
)

// CellAspect is how much taller a terminal cell is than it is wide.
const CellAspect = 2.0

const edgeRune = '·'

// Renderer handles drawing snapshots to the screen.
type Renderer struct {
	screen *Screen
	// ShowGraph draws connectivity edges between room centers.
	ShowGraph bool
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen, ShowGraph: true}
}

// Render draws the rooms of s scaled to fit above a one-line status bar.
func (r *Renderer) Render(s snapshot.Snapshot) {
	r.screen.Clear()

	width, height := r.screen.Size()
	rows := height - 1
	if width <= 0 || rows <= 0 {
		r.screen.Show()
		return
	}

	m, tr := tilemap.Rasterize(s.Rects(), width, rows, CellAspect)

	if r.ShowGraph {
		r.drawEdges(s, m, tr)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			owner := m.OwnerAt(x, y)
			if owner == tilemap.NoOwner {
				continue
			}
			tile := m.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), r.getTileStyle(tile, s.Rooms[owner]))
		}
	}

	r.RenderMessage(Status(s), height-1)
	r.screen.Show()
}

// drawEdges plots each graph edge on cells no room covers.
func (r *Renderer) drawEdges(s snapshot.Snapshot, m *tilemap.Map, tr tilemap.Transform) {
	style := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	for _, e := range s.Edges {
		a, b := s.Vertices[e.A], s.Vertices[e.B]
		x0, y0 := tr.Cell(geom.Point{X: a.X, Y: a.Y})
		x1, y1 := tr.Cell(geom.Point{X: b.X, Y: b.Y})
		line(x0, y0, x1, y1, func(x, y int) {
			if x >= 0 && x < m.Width && y >= 0 && y < m.Height && m.OwnerAt(x, y) == tilemap.NoOwner {
				r.screen.SetContent(x, y, edgeRune, style)
			}
		})
	}
}

// getTileStyle returns the style for a tile of the given room.
func (r *Renderer) getTileStyle(tile tilemap.Tile, room snapshot.Room) tcell.Style {
	fill := tcell.GetColor(room.Fill)
	switch tile {
	case tilemap.TileWall:
		outline := fill
		if room.Outline != "" {
			outline = tcell.GetColor(room.Outline)
		}
		return tcell.StyleDefault.Foreground(outline).Background(fill)
	case tilemap.TileFloor:
		return tcell.StyleDefault.Foreground(fill).Background(fill)
	default:
		return tcell.StyleDefault
	}
}

// RenderMessage displays a message on row y.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range []rune(msg) {
		r.screen.SetContent(i, y, ch, style)
	}
}

// Status is the one-line summary shown under the map.
func Status(s snapshot.Snapshot) string {
	msg := fmt.Sprintf("%s | rooms %d (major %d) | passes %d | overlap %.0f",
		s.Phase, len(s.Rooms), s.MajorCount(), s.Passes, s.Overlap)
	if s.Error != "" {
		msg += " | " + s.Error
	}
	return msg
}

// line walks the cells between two points with Bresenham's algorithm.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	dy := -int(math.Abs(float64(y1 - y0)))
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}
