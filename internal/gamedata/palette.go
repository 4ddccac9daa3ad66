package gamedata

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/towerfield/internal/world"
)

// PaletteFile represents the structure of palette.json. Colors are hex strings.
type PaletteFile struct {
	Tiles  map[string]string `json:"tiles"` // Keyed by tile name (e.g., "wall")
	Spawn  string            `json:"spawn"`
	Exit   string            `json:"exit"`
	Arrow  string            `json:"arrow"`
	Cursor string            `json:"cursor"`
}

// Palette holds the resolved colors used to draw a level.
type Palette struct {
	tiles  [4]tcell.Color
	Spawn  tcell.Color
	Exit   tcell.Color
	Arrow  tcell.Color
	Cursor tcell.Color
}

// TileColor returns the fill color for a tile type.
func (p *Palette) TileColor(t world.Tile) tcell.Color {
	if !t.Valid() {
		return tcell.ColorDefault
	}
	return p.tiles[t]
}

// LoadPalette loads and resolves the embedded palette.json.
func LoadPalette() (*Palette, error) {
	file, err := Load[PaletteFile]("palette.json")
	if err != nil {
		return nil, err
	}

	p := &Palette{}
	for _, t := range []world.Tile{world.TileEmpty, world.TileWall, world.TilePath, world.TileTower} {
		hex, ok := file.Tiles[t.String()]
		if !ok {
			return nil, fmt.Errorf("palette has no color for tile %q", t)
		}
		if p.tiles[t], err = ParseHexColor(hex); err != nil {
			return nil, err
		}
	}

	for _, c := range []struct {
		dst *tcell.Color
		hex string
	}{
		{&p.Spawn, file.Spawn},
		{&p.Exit, file.Exit},
		{&p.Arrow, file.Arrow},
		{&p.Cursor, file.Cursor},
	} {
		if *c.dst, err = ParseHexColor(c.hex); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// MustLoadPalette loads the palette, panicking on error.
// The palette is embedded, so a failure here is a build problem.
func MustLoadPalette() *Palette {
	p, err := LoadPalette()
	if err != nil {
		panic(err)
	}
	return p
}
