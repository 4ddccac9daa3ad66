package editor

import (
	"github.com/samdwyer/towerfield/internal/world"
)

// Apply performs tool at (x, y) and reports whether the grid changed.
// It never fails: out of bounds targets and tools that do not apply to the
// target tile (a direction on a wall, for example) are ignored.
func Apply(g *world.Grid, tool Tool, x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}

	if t, ok := tool.tile(); ok {
		if g.TileAt(x, y) == t {
			return false
		}
		return g.SetTile(x, y, t) == nil
	}

	if d, ok := tool.direction(); ok {
		if !g.Walkable(x, y) || g.DirectionAt(x, y) == d {
			return false
		}
		return g.SetDirection(x, y, d) == nil
	}

	switch tool {
	case ToolExit:
		if exit, ok := g.Exit(); ok && exit == (world.Point{X: x, Y: y}) {
			return false
		}
		return g.SetExit(x, y) == nil
	case ToolSpawn:
		added, err := g.AddSpawnpoint(x, y)
		return err == nil && added
	case ToolClearSpawns:
		had := len(g.Spawnpoints()) > 0
		g.ClearSpawnpoints()
		return had
	case ToolClearDirection:
		if g.DirectionAt(x, y) == world.DirNone {
			return false
		}
		return g.SetDirection(x, y, world.DirNone) == nil
	}

	return false
}

// Editor tracks the selected tool and whether the flow field is stale.
type Editor struct {
	grid     *world.Grid
	selected Tool
	dirty    bool
}

// New creates an editor over g with the empty tool selected.
func New(g *world.Grid) *Editor {
	return &Editor{grid: g, selected: ToolEmpty}
}

// Grid returns the grid being edited.
func (e *Editor) Grid() *world.Grid {
	return e.grid
}

// Select changes the active tool.
func (e *Editor) Select(t Tool) {
	e.selected = t
}

// Selected returns the active tool.
func (e *Editor) Selected() Tool {
	return e.selected
}

// Paint applies the selected tool at (x, y).
func (e *Editor) Paint(x, y int) bool {
	changed := Apply(e.grid, e.selected, x, y)
	if changed {
		e.dirty = true
	}
	return changed
}

// Dirty reports whether the grid changed since the last MarkClean.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// MarkClean records that the flow field matches the grid again.
func (e *Editor) MarkClean() {
	e.dirty = false
}

// MarkDirty flags the grid as changed outside of Paint (imports, resets).
func (e *Editor) MarkDirty() {
	e.dirty = true
}
