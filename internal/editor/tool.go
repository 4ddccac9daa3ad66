// Package editor maps editing tools onto grid mutations.
package editor

import (
	"fmt"

	"github.com/samdwyer/towerfield/internal/world"
)

// Tool is an editing action applied to a single tile.
type Tool int

const (
	ToolEmpty Tool = iota
	ToolWall
	ToolPath
	ToolTower
	ToolExit
	ToolSpawn
	ToolClearSpawns
	ToolUp
	ToolDown
	ToolLeft
	ToolRight
	ToolClearDirection
)

var toolNames = map[Tool]string{
	ToolEmpty:          "empty",
	ToolWall:           "wall",
	ToolPath:           "path",
	ToolTower:          "tower",
	ToolExit:           "exit",
	ToolSpawn:          "spawn",
	ToolClearSpawns:    "clear-spawns",
	ToolUp:             "up",
	ToolDown:           "down",
	ToolLeft:           "left",
	ToolRight:          "right",
	ToolClearDirection: "none",
}

// String returns the tool name.
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTool looks a tool up by name.
func ParseTool(name string) (Tool, error) {
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return ToolEmpty, fmt.Errorf("unknown tool %q", name)
}

// tile returns the tile a painting tool places.
func (t Tool) tile() (world.Tile, bool) {
	switch t {
	case ToolEmpty:
		return world.TileEmpty, true
	case ToolWall:
		return world.TileWall, true
	case ToolPath:
		return world.TilePath, true
	case ToolTower:
		return world.TileTower, true
	default:
		return 0, false
	}
}

// direction returns the override a direction tool sets.
func (t Tool) direction() (world.Direction, bool) {
	switch t {
	case ToolUp:
		return world.DirUp, true
	case ToolDown:
		return world.DirDown, true
	case ToolLeft:
		return world.DirLeft, true
	case ToolRight:
		return world.DirRight, true
	default:
		return world.DirNone, false
	}
}
