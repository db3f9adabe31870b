// Package tilemap rasterizes a room set into a grid of character tiles.
package tilemap

// Tile represents a single map tile.
type Tile rune

const (
	// TileEmpty is space outside every room.
	TileEmpty Tile = ' '
	// TileWall is a room's outline.
	TileWall Tile = '#'
	// TileFloor is a room's interior.
	TileFloor Tile = '.'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileFloor
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
