package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/towerfield/internal/gamedata"
	"github.com/samdwyer/towerfield/internal/world"
)

// HUDRows is the number of terminal rows below the grid used for status text.
const HUDRows = 2

var arrowRunes = map[world.Direction]rune{
	world.DirUp:    '↑',
	world.DirDown:  '↓',
	world.DirLeft:  '←',
	world.DirRight: '→',
}

// View carries presentation state that is not part of the level.
type View struct {
	TileWidth int    // Terminal cells per tile, horizontally
	Tool      string // Name of the selected tool
	Status    string // Last message (export result, import error, ...)
	Stale     bool   // Grid edited since the last recalculation
}

// Renderer handles drawing the level to the screen.
type Renderer struct {
	screen  *Screen
	palette *gamedata.Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette *gamedata.Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// Render draws tiles, spawnpoints, the exit, direction arrows and the status bar.
func (r *Renderer) Render(g *world.Grid, v View) {
	r.screen.Clear()
	tw := max(v.TileWidth, 1)

	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			r.fillTile(x, y, tw, r.palette.TileColor(g.TileAt(x, y)), ' ')
		}
	}

	for _, s := range g.Spawnpoints() {
		r.fillTile(s.X, s.Y, tw, r.palette.Spawn, 'S')
	}

	if exit, ok := g.Exit(); ok {
		r.fillTile(exit.X, exit.Y, tw, r.palette.Exit, 'E')
	}

	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			d := g.DirectionAt(x, y)
			if d == world.DirNone {
				continue
			}
			sx := x*tw + tw/2
			_, style := r.screen.Content(sx, y)
			r.screen.SetContent(sx, y, arrowRunes[d], style.Foreground(r.palette.Arrow))
		}
	}

	r.renderHUD(g, v)
	r.screen.Show()
}

// fillTile paints every cell of a tile with bg and puts label in the first cell.
func (r *Renderer) fillTile(x, y, tw int, bg tcell.Color, label rune) {
	style := tcell.StyleDefault.Background(bg).Foreground(tcell.ColorBlack)
	for i := 0; i < tw; i++ {
		ch := ' '
		if i == 0 {
			ch = label
		}
		r.screen.SetContent(x*tw+i, y, ch, style)
	}
}

func (r *Renderer) renderHUD(g *world.Grid, v View) {
	y := g.Rows()
	tool := "tool: " + v.Tool
	if v.Stale {
		tool += "  [field stale, P to recalculate]"
	}
	r.renderLine(tool, y, r.palette.Cursor)
	r.RenderMessage(v.Status, y+1)
}

// RenderMessage writes a line of text starting at column 0.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.renderLine(msg, y, tcell.ColorWhite)
}

func (r *Renderer) renderLine(msg string, y int, fg tcell.Color) {
	style := tcell.StyleDefault.Foreground(fg)
	x := 0
	for _, ch := range msg {
		r.screen.SetContent(x, y, ch, style)
		x++
	}
}

// GridPos converts a screen cell to the tile under it.
func GridPos(screenX, screenY, tileWidth int) (x, y int) {
	return screenX / max(tileWidth, 1), screenY
}

// FitGrid returns how many tiles fit in a terminal of the given size.
func FitGrid(width, height, tileWidth int) (cols, rows int) {
	return max(width/max(tileWidth, 1), 1), max(height-HUDRows, 1)
}
