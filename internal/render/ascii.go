package render

import (
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
	"github.com/samdwyer/dungeonlayout/internal/tilemap"
)

// ASCII draws the rooms as a cols × rows character map. Cells are assumed
// twice as tall as they are wide, as in a terminal.
func ASCII(s snapshot.Snapshot, cols, rows int) string {
	m, _ := tilemap.Rasterize(s.Rects(), cols, rows, 2)
	return m.String()
}
