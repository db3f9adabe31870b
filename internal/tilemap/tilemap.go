package tilemap

import (
	"math"
	"strings"

	"github.com/samdwyer/dungeonlayout/internal/geom"
)

// NoOwner marks a cell no room covers.
const NoOwner = -1

// Transform maps world coordinates onto cells.
type Transform struct {
	Origin geom.Point // world position of cell (0, 0)
	ScaleX float64    // world units per column
	ScaleY float64    // world units per row
}

// Cell returns the column and row containing p.
func (t Transform) Cell(p geom.Point) (int, int) {
	return int(math.Floor((p.X - t.Origin.X) / t.ScaleX)), int(math.Floor((p.Y - t.Origin.Y) / t.ScaleY))
}

// Fit returns a transform that shows bounds inside cols × rows cells. Rows
// are cellAspect times taller than columns are wide.
func Fit(bounds geom.Rect, cols, rows int, cellAspect float64) Transform {
	sx := math.Max(bounds.W/float64(cols), bounds.H/(float64(rows)*cellAspect))
	if !(sx > 0) {
		sx = 1
	}
	sy := sx * cellAspect

	// center the content
	padX := (float64(cols)*sx - bounds.W) / 2
	padY := (float64(rows)*sy - bounds.H) / 2
	return Transform{
		Origin: geom.Point{X: bounds.X - padX, Y: bounds.Y - padY},
		ScaleX: sx,
		ScaleY: sy,
	}
}

// Bounds returns the smallest rectangle containing every rect.
func Bounds(rects []geom.Rect) geom.Rect {
	if len(rects) == 0 {
		return geom.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Map is a grid of tiles with the index of the room covering each cell.
type Map struct {
	Width  int
	Height int
	Tiles  [][]Tile
	Owners [][]int
}

// New creates an empty map.
func New(width, height int) *Map {
	tiles := make([][]Tile, height)
	owners := make([][]int, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		owners[y] = make([]int, width)
		for x := range tiles[y] {
			tiles[y][x] = TileEmpty
			owners[y][x] = NoOwner
		}
	}

	return &Map{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Owners: owners,
	}
}

// Rasterize fits every rect into a cols × rows map and carves them in order.
func Rasterize(rects []geom.Rect, cols, rows int, cellAspect float64) (*Map, Transform) {
	t := Fit(Bounds(rects), cols, rows, cellAspect)
	m := New(cols, rows)
	for i, r := range rects {
		m.CarveRoom(r, i, t)
	}
	return m, t
}

// CarveRoom draws r as a wall outline around a floor interior. Later rooms
// overwrite earlier ones where they share cells.
func (m *Map) CarveRoom(r geom.Rect, owner int, t Transform) {
	x0, y0 := t.Cell(r.Origin())
	x1 := int(math.Ceil((r.X+r.W-t.Origin.X)/t.ScaleX)) - 1
	y1 := int(math.Ceil((r.Y+r.H-t.Origin.Y)/t.ScaleY)) - 1

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !m.inBounds(x, y) {
				continue
			}
			tile := TileFloor
			if x == x0 || x == x1 || y == y0 || y == y1 {
				tile = TileWall
			}
			m.Tiles[y][x] = tile
			m.Owners[y][x] = owner
		}
	}
}

// IsPassable returns true if the given position can be walked on.
func (m *Map) IsPassable(x, y int) bool {
	return m.GetTile(x, y).IsPassable()
}

// GetTile returns the tile at the given position.
func (m *Map) GetTile(x, y int) Tile {
	if !m.inBounds(x, y) {
		return TileEmpty
	}
	return m.Tiles[y][x]
}

// OwnerAt returns the index of the room covering the cell, or NoOwner.
func (m *Map) OwnerAt(x, y int) int {
	if !m.inBounds(x, y) {
		return NoOwner
	}
	return m.Owners[y][x]
}

// String renders the map one row per line.
func (m *Map) String() string {
	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			b.WriteRune(m.Tiles[y][x].Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Map) inBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}
