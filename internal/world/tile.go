// Package world provides the level grid: tiles, flow directions, the exit and spawnpoints.
package world

// Tile represents the type of a single map tile.
type Tile uint8

const (
	// TileEmpty is open ground. Walkable, and towers may later be placed here.
	TileEmpty Tile = iota
	// TileWall is an impassable wall tile.
	TileWall
	// TilePath is a walkable tile painted as part of the enemy route.
	TilePath
	// TileTower is an impassable tile occupied by a tower.
	TileTower

	tileCount
)

// IsWalkable returns true if agents can move across the tile.
func (t Tile) IsWalkable() bool {
	return t == TileEmpty || t == TilePath
}

// Valid returns true if t is one of the known tile types.
func (t Tile) Valid() bool {
	return t < tileCount
}

// String returns a human-readable tile name.
func (t Tile) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileWall:
		return "wall"
	case TilePath:
		return "path"
	case TileTower:
		return "tower"
	default:
		return "unknown"
	}
}
