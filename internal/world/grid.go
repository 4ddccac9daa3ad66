package world

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

const (
	// Default level dimensions
	DefaultCols = 40
	DefaultRows = 20

	// MaxCells bounds cols*rows for any grid
	MaxCells = 1 << 22
)

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive and within MaxCells")
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrInvalidTile       = errors.New("invalid tile type")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrNotWalkable       = errors.New("tile is not walkable")
	ErrExitTile          = errors.New("exit tile cannot hold a direction")
	ErrSizeMismatch      = errors.New("array size does not match grid dimensions")
	ErrInvalidWaves      = errors.New("waves must be valid JSON")
)

// Grid represents a tower-defense level.
// Tiles and directions are stored row-major: index = y*cols + x.
type Grid struct {
	cols, rows  int
	tiles       []Tile
	directions  []Direction
	exit        Point
	hasExit     bool
	spawnpoints []Point
	waves       json.RawMessage
}

// NewGrid creates an empty grid with every tile set to TileEmpty.
func NewGrid(cols, rows int) (*Grid, error) {
	g := &Grid{}
	if err := g.Reset(cols, rows); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGrid creates a grid, panicking on invalid dimensions.
func MustNewGrid(cols, rows int) *Grid {
	g, err := NewGrid(cols, rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Reset reinitializes the grid to the given dimensions: all tiles empty, no directions,
// no exit and no spawnpoints. Waves are level configuration and are kept.
// On invalid dimensions the grid is left untouched.
func (g *Grid) Reset(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > MaxCells/rows {
		return fmt.Errorf("reset %dx%d: %w", cols, rows, ErrInvalidDimensions)
	}
	g.cols = cols
	g.rows = rows
	g.tiles = make([]Tile, cols*rows)
	g.directions = make([]Direction, cols*rows)
	g.exit = Point{}
	g.hasExit = false
	g.spawnpoints = nil
	return nil
}

// Cols returns the grid width in tiles.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in tiles.
func (g *Grid) Rows() int { return g.rows }

// InBounds returns true if (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

func (g *Grid) index(x, y int) int {
	return y*g.cols + x
}

func (g *Grid) checkBounds(x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("(%d,%d) in %dx%d grid: %w", x, y, g.cols, g.rows, ErrOutOfBounds)
	}
	return nil
}

// Walkable returns true if the tile at (x, y) is Empty or Path.
// Out of bounds positions are never walkable.
func (g *Grid) Walkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.tiles[g.index(x, y)].IsWalkable()
}

// TileAt returns the tile at the given position, or TileWall if out of bounds.
func (g *Grid) TileAt(x, y int) Tile {
	if !g.InBounds(x, y) {
		return TileWall
	}
	return g.tiles[g.index(x, y)]
}

// DirectionAt returns the direction stored at the given position, or DirNone if out of bounds.
func (g *Grid) DirectionAt(x, y int) Direction {
	if !g.InBounds(x, y) {
		return DirNone
	}
	return g.directions[g.index(x, y)]
}

// SetTile changes the tile type at (x, y). Walls and towers drop any direction on the tile.
func (g *Grid) SetTile(x, y int, t Tile) error {
	if err := g.checkBounds(x, y); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("set tile %d: %w", t, ErrInvalidTile)
	}
	i := g.index(x, y)
	g.tiles[i] = t
	if !t.IsWalkable() {
		g.directions[i] = DirNone
	}
	return nil
}

// SetDirection sets or clears (DirNone) the direction on a walkable tile.
// The override lasts until the next flow field recalculation.
func (g *Grid) SetDirection(x, y int, d Direction) error {
	if err := g.checkBounds(x, y); err != nil {
		return err
	}
	if !d.Valid() {
		return fmt.Errorf("set direction %d: %w", d, ErrInvalidDirection)
	}
	i := g.index(x, y)
	if d != DirNone {
		if !g.tiles[i].IsWalkable() {
			return fmt.Errorf("set direction on %s at (%d,%d): %w", g.tiles[i], x, y, ErrNotWalkable)
		}
		if g.hasExit && g.exit == (Point{X: x, Y: y}) {
			return fmt.Errorf("set direction at (%d,%d): %w", x, y, ErrExitTile)
		}
	}
	g.directions[i] = d
	return nil
}

// Exit returns the exit position and whether one is set.
func (g *Grid) Exit() (Point, bool) {
	return g.exit, g.hasExit
}

// SetExit moves the exit to (x, y). The flow field is not recalculated.
func (g *Grid) SetExit(x, y int) error {
	if err := g.checkBounds(x, y); err != nil {
		return err
	}
	g.exit = Point{X: x, Y: y}
	g.hasExit = true
	g.directions[g.index(x, y)] = DirNone
	return nil
}

// ClearExit removes the exit.
func (g *Grid) ClearExit() {
	g.exit = Point{}
	g.hasExit = false
}

// AddSpawnpoint adds a spawnpoint. Returns false if one already exists at (x, y).
func (g *Grid) AddSpawnpoint(x, y int) (bool, error) {
	if err := g.checkBounds(x, y); err != nil {
		return false, err
	}
	if g.HasSpawnpoint(x, y) {
		return false, nil
	}
	g.spawnpoints = append(g.spawnpoints, Point{X: x, Y: y})
	return true, nil
}

// RemoveSpawnpoint removes the spawnpoint at (x, y), returning true if one was removed.
func (g *Grid) RemoveSpawnpoint(x, y int) bool {
	p := Point{X: x, Y: y}
	i := slices.Index(g.spawnpoints, p)
	if i < 0 {
		return false
	}
	g.spawnpoints = slices.Delete(g.spawnpoints, i, i+1)
	return true
}

// HasSpawnpoint returns true if a spawnpoint exists at (x, y).
func (g *Grid) HasSpawnpoint(x, y int) bool {
	return slices.Contains(g.spawnpoints, Point{X: x, Y: y})
}

// ClearSpawnpoints removes all spawnpoints.
func (g *Grid) ClearSpawnpoints() {
	g.spawnpoints = nil
}

// Spawnpoints returns a copy of the spawnpoints in insertion order.
func (g *Grid) Spawnpoints() []Point {
	return slices.Clone(g.spawnpoints)
}

// Waves returns the opaque wave configuration, or nil if unset.
func (g *Grid) Waves() json.RawMessage {
	return slices.Clone(g.waves)
}

// SetWaves replaces the wave configuration. The value must be valid JSON and is stored
// compacted; a JSON null or empty value clears it.
func (g *Grid) SetWaves(w json.RawMessage) error {
	if len(bytes.TrimSpace(w)) == 0 || bytes.Equal(bytes.TrimSpace(w), []byte("null")) {
		g.waves = nil
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, w); err != nil {
		return fmt.Errorf("set waves: %w", ErrInvalidWaves)
	}
	g.waves = buf.Bytes()
	return nil
}

// WalkMap returns a row-major walkability snapshot of the whole grid.
func (g *Grid) WalkMap() []bool {
	walk := make([]bool, len(g.tiles))
	for i, t := range g.tiles {
		walk[i] = t.IsWalkable()
	}
	return walk
}

// Tiles returns a row-major copy of the tile array.
func (g *Grid) Tiles() []Tile {
	return slices.Clone(g.tiles)
}

// Directions returns a row-major copy of the direction array.
func (g *Grid) Directions() []Direction {
	return slices.Clone(g.directions)
}

// ReplaceDirections overwrites the whole direction array. Entries on walls, towers and
// the exit tile are forced to DirNone.
func (g *Grid) ReplaceDirections(dirs []Direction) error {
	if len(dirs) != len(g.directions) {
		return fmt.Errorf("replace directions: got %d, want %d: %w", len(dirs), len(g.directions), ErrSizeMismatch)
	}
	for i, d := range dirs {
		if !d.Valid() {
			return fmt.Errorf("replace directions at index %d: %w", i, ErrInvalidDirection)
		}
	}
	copy(g.directions, dirs)
	for i, t := range g.tiles {
		if !t.IsWalkable() {
			g.directions[i] = DirNone
		}
	}
	if g.hasExit {
		g.directions[g.index(g.exit.X, g.exit.Y)] = DirNone
	}
	return nil
}

// ReplaceWith swaps the full state of g for a deep copy of other.
func (g *Grid) ReplaceWith(other *Grid) {
	*g = *other.Clone()
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{
		cols:        g.cols,
		rows:        g.rows,
		tiles:       slices.Clone(g.tiles),
		directions:  slices.Clone(g.directions),
		exit:        g.exit,
		hasExit:     g.hasExit,
		spawnpoints: slices.Clone(g.spawnpoints),
		waves:       slices.Clone(g.waves),
	}
}

// Equal reports whether two grids hold identical level state.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.cols == other.cols &&
		g.rows == other.rows &&
		slices.Equal(g.tiles, other.tiles) &&
		slices.Equal(g.directions, other.directions) &&
		g.hasExit == other.hasExit &&
		g.exit == other.exit &&
		slices.Equal(g.spawnpoints, other.spawnpoints) &&
		bytes.Equal(g.waves, other.waves)
}
