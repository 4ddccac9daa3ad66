// Package mapcodec converts a level grid to and from its map string.
//
// A map string is a JSON object:
//
//	{"grid":[[0,1],[2,3]],"paths":[["right",null],[null,null]],"exit":[1,0],
//	 "spawnpoints":[[0,0]],"cols":2,"rows":2,"waves":...}
//
// grid and paths are indexed [x][y]. waves is carried through untouched.
package mapcodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samdwyer/towerfield/internal/world"
)

var (
	// ErrNoExit is returned when encoding a grid without an exit.
	ErrNoExit = errors.New("map has no exit")
	// ErrMalformed wraps every decode failure.
	ErrMalformed = errors.New("malformed map string")
)

// mapFile is the wire form of a level.
type mapFile struct {
	Grid        [][]int         `json:"grid"`
	Paths       [][]*string     `json:"paths"`
	Exit        []int           `json:"exit"`
	Spawnpoints [][]int         `json:"spawnpoints"`
	Cols        int             `json:"cols"`
	Rows        int             `json:"rows"`
	Waves       json.RawMessage `json:"waves"`
}

// Encode returns the map string for g.
func Encode(g *world.Grid) (string, error) {
	data, err := marshal(g)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshal(g *world.Grid) ([]byte, error) {
	exit, ok := g.Exit()
	if !ok {
		return nil, ErrNoExit
	}

	cols, rows := g.Cols(), g.Rows()
	m := mapFile{
		Grid:        make([][]int, cols),
		Paths:       make([][]*string, cols),
		Exit:        []int{exit.X, exit.Y},
		Spawnpoints: make([][]int, 0),
		Cols:        cols,
		Rows:        rows,
		Waves:       g.Waves(),
	}

	for x := 0; x < cols; x++ {
		m.Grid[x] = make([]int, rows)
		m.Paths[x] = make([]*string, rows)
		for y := 0; y < rows; y++ {
			m.Grid[x][y] = int(g.TileAt(x, y))
			if d := g.DirectionAt(x, y); d != world.DirNone {
				tag := d.String()
				m.Paths[x][y] = &tag
			}
		}
	}

	for _, s := range g.Spawnpoints() {
		m.Spawnpoints = append(m.Spawnpoints, []int{s.X, s.Y})
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map: %w", err)
	}
	return data, nil
}

// Decode parses a map string into a new grid. It never modifies an existing grid:
// either a complete, valid grid is returned or an error wrapping ErrMalformed.
func Decode(s string) (*world.Grid, error) {
	return unmarshal([]byte(s))
}

func unmarshal(data []byte) (*world.Grid, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	for _, field := range []string{"grid", "paths", "exit", "spawnpoints", "cols", "rows"} {
		if v, ok := raw[field]; !ok || bytes.Equal(v, []byte("null")) {
			return nil, malformed("missing field %q", field)
		}
	}

	var m mapFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, malformed("invalid field: %v", err)
	}
	if m.Cols <= 0 || m.Rows <= 0 {
		return nil, malformed("dimensions %dx%d must be positive", m.Cols, m.Rows)
	}
	if len(m.Grid) != m.Cols || len(m.Paths) != m.Cols {
		return nil, malformed("expected %d columns, got grid=%d paths=%d", m.Cols, len(m.Grid), len(m.Paths))
	}
	// Shapes are checked against the decoded arrays before anything is allocated
	for x := 0; x < m.Cols; x++ {
		if len(m.Grid[x]) != m.Rows || len(m.Paths[x]) != m.Rows {
			return nil, malformed("column %d: expected %d rows, got grid=%d paths=%d", x, m.Rows, len(m.Grid[x]), len(m.Paths[x]))
		}
	}

	g, err := world.NewGrid(m.Cols, m.Rows)
	if err != nil {
		return nil, malformed("%v", err)
	}

	for x := 0; x < m.Cols; x++ {
		for y := 0; y < m.Rows; y++ {
			v := m.Grid[x][y]
			if v < int(world.TileEmpty) || v > int(world.TileTower) {
				return nil, malformed("unknown tile %d at (%d,%d)", v, x, y)
			}
			g.SetTile(x, y, world.Tile(v))
		}
	}

	exit, err := point(m.Exit, g)
	if err != nil {
		return nil, malformed("exit: %v", err)
	}
	g.SetExit(exit.X, exit.Y)

	// A direction left on the exit tile (an override placed before the exit) is dropped
	for x := 0; x < m.Cols; x++ {
		for y := 0; y < m.Rows; y++ {
			tag := m.Paths[x][y]
			if tag == nil {
				continue
			}
			d, ok := world.ParseDirection(*tag)
			if !ok {
				return nil, malformed("unknown direction %q at (%d,%d)", *tag, x, y)
			}
			if exit == (world.Point{X: x, Y: y}) {
				continue
			}
			if err := g.SetDirection(x, y, d); err != nil {
				return nil, malformed("%v", err)
			}
		}
	}

	for i, s := range m.Spawnpoints {
		p, err := point(s, g)
		if err != nil {
			return nil, malformed("spawnpoint %d: %v", i, err)
		}
		added, _ := g.AddSpawnpoint(p.X, p.Y)
		if !added {
			return nil, malformed("duplicate spawnpoint (%d,%d)", p.X, p.Y)
		}
	}

	if err := g.SetWaves(m.Waves); err != nil {
		return nil, malformed("%v", err)
	}

	return g, nil
}

func point(c []int, g *world.Grid) (world.Point, error) {
	if len(c) != 2 {
		return world.Point{}, fmt.Errorf("expected [x,y], got %d values", len(c))
	}
	if !g.InBounds(c[0], c[1]) {
		return world.Point{}, fmt.Errorf("(%d,%d) outside %dx%d grid", c[0], c[1], g.Cols(), g.Rows())
	}
	return world.Point{X: c[0], Y: c[1]}, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
