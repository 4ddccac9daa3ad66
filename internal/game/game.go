// Package game runs the interactive level editor: input, editing and drawing.
package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/towerfield/internal/config"
	"github.com/samdwyer/towerfield/internal/editor"
	"github.com/samdwyer/towerfield/internal/flowfield"
	"github.com/samdwyer/towerfield/internal/gamedata"
	"github.com/samdwyer/towerfield/internal/mapcodec"
	"github.com/samdwyer/towerfield/internal/store"
	"github.com/samdwyer/towerfield/internal/telemetry"
	"github.com/samdwyer/towerfield/internal/ui"
	"github.com/samdwyer/towerfield/internal/world"
)

// Game holds the editor session.
type Game struct {
	cfg       *config.Config
	screen    *ui.Screen
	renderer  *ui.Renderer
	store     store.Storage
	grid      *world.Grid
	editor    *editor.Editor
	tileWidth int
	status    string
	running   bool
}

// New creates an editor on the terminal.
func New(cfg *config.Config, st store.Storage) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return newGame(cfg, st, screen)
}

func newGame(cfg *config.Config, st store.Storage, screen *ui.Screen) (*Game, error) {
	palette, err := gamedata.LoadPalette()
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:       cfg,
		screen:    screen,
		renderer:  ui.NewRenderer(screen, palette),
		store:     st,
		tileWidth: cfg.TileWidth,
		running:   true,
	}

	cols, rows := g.gridSize()
	g.grid, err = world.NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	g.editor = editor.New(g.grid)
	g.status = "1-6 pick tile tools, arrows pick directions, P recalculates, X exports, M imports"
	return g, nil
}

// gridSize returns the configured size, or as many tiles as fit on screen.
func (g *Game) gridSize() (int, int) {
	if g.cfg.FixedSize() {
		return g.cfg.Cols, g.cfg.Rows
	}
	w, h := g.screen.Size()
	return ui.FitGrid(w, h, g.tileWidth)
}

// Run executes the main editor loop.
func (g *Game) Run(ctx context.Context) error {
	_, span := telemetry.Tracer("game").Start(ctx, "game.init")
	span.SetAttributes(
		attribute.Int("grid.cols", g.grid.Cols()),
		attribute.Int("grid.rows", g.grid.Rows()),
		attribute.Int("ui.tile_width", g.tileWidth),
	)
	span.End()

	for g.running {
		g.render()
		g.handleEvent(ctx, g.screen.PollEvent())
	}

	g.screen.Close()
	return nil
}

func (g *Game) render() {
	g.renderer.Render(g.grid, ui.View{
		TileWidth: g.tileWidth,
		Tool:      g.editor.Selected().String(),
		Status:    g.status,
		Stale:     g.editor.Dirty(),
	})
}

// handleEvent processes a single input event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.execute(ctx, bindKey(ev))
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return
		}
		x, y := ev.Position()
		gx, gy := ui.GridPos(x, y, g.tileWidth)
		g.editor.Paint(gx, gy)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

func (g *Game) execute(ctx context.Context, b binding) {
	switch b.cmd {
	case cmdSelect:
		g.editor.Select(b.tool)
	case cmdRecalculate:
		g.recalculate(ctx)
	case cmdReset:
		g.reset(g.grid.Cols(), g.grid.Rows())
	case cmdClearSpawns:
		// The tool ignores its target; (0, 0) is inside every grid
		if editor.Apply(g.grid, editor.ToolClearSpawns, 0, 0) {
			g.status = "spawnpoints cleared"
		}
	case cmdExport:
		g.export(ctx)
	case cmdImport:
		g.importFile(ctx)
	case cmdSample:
		g.loadSample(ctx)
	case cmdZoomOut:
		g.zoom(-1)
	case cmdZoomIn:
		g.zoom(1)
	case cmdQuit:
		g.running = false
	}
}

func (g *Game) recalculate(ctx context.Context) {
	stats := flowfield.Recalculate(ctx, g.grid)
	if !stats.HasExit {
		g.status = "no exit set: place one with 6 first"
		return
	}
	g.editor.MarkClean()
	g.status = fmt.Sprintf("%d tiles reach the exit, longest route %d steps", stats.Reachable-1, stats.MaxDistance)
}

func (g *Game) reset(cols, rows int) {
	if err := g.grid.Reset(cols, rows); err != nil {
		g.status = err.Error()
		return
	}
	g.editor.MarkClean()
	g.status = fmt.Sprintf("new %dx%d level", cols, rows)
}

// zoom changes the tile width and refits the grid, which starts a new level.
func (g *Game) zoom(delta int) {
	tw := g.tileWidth + delta
	if tw < config.MinTileWidth || tw > config.MaxTileWidth {
		return
	}
	g.tileWidth = tw
	cols, rows := g.gridSize()
	g.reset(cols, rows)
}

// levelName derives the store key from the map file name.
func (g *Game) levelName() string {
	base := filepath.Base(g.cfg.MapFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (g *Game) export(ctx context.Context) {
	s, err := mapcodec.Encode(g.grid)
	if err != nil {
		g.status = "export failed: " + err.Error()
		return
	}
	if err := os.WriteFile(g.cfg.MapFile, []byte(s), 0o644); err != nil {
		g.status = "export failed: " + err.Error()
		return
	}

	code, err := mapcodec.EncodeShareCode(g.grid)
	if err == nil {
		err = os.WriteFile(g.cfg.MapFile+".share", []byte(code), 0o644)
	}
	if err != nil {
		g.status = "share code not written: " + err.Error()
		return
	}

	if g.store != nil {
		if _, err := g.store.Save(ctx, g.levelName(), s); err != nil {
			g.status = "exported, but saving to the level store failed: " + err.Error()
			return
		}
	}
	g.status = fmt.Sprintf("exported to %s (share code %d chars)", g.cfg.MapFile, len(code))
}

// importFile loads the map file. A malformed map leaves a freshly reset grid.
func (g *Game) importFile(ctx context.Context) {
	data, err := os.ReadFile(g.cfg.MapFile)
	if err != nil {
		if g.store == nil {
			g.status = "import failed: " + err.Error()
			return
		}
		rec, serr := g.store.Load(ctx, g.levelName())
		if serr != nil {
			g.status = "import failed: " + err.Error()
			return
		}
		data = []byte(rec.Data)
	}
	g.load(ctx, string(data), g.cfg.MapFile)
}

func (g *Game) loadSample(ctx context.Context) {
	s, err := gamedata.SampleLevel()
	if err != nil {
		g.status = err.Error()
		return
	}
	g.load(ctx, s, "sample level")
}

func (g *Game) load(ctx context.Context, s, source string) {
	g.editor.MarkDirty()
	if err := mapcodec.Import(ctx, g.grid, s); err != nil {
		g.editor.MarkClean()
		g.status = "import failed, level reset: " + err.Error()
		return
	}
	g.fitTileWidth()
	g.status = fmt.Sprintf("loaded %dx%d level from %s", g.grid.Cols(), g.grid.Rows(), source)
}

// fitTileWidth picks the widest tiles that keep an imported level on screen.
func (g *Game) fitTileWidth() {
	w, _ := g.screen.Size()
	tw := w / g.grid.Cols()
	g.tileWidth = min(max(tw, config.MinTileWidth), config.MaxTileWidth)
}
