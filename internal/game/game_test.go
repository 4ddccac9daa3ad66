package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/towerfield/internal/config"
	"github.com/samdwyer/towerfield/internal/editor"
	"github.com/samdwyer/towerfield/internal/mapcodec"
	"github.com/samdwyer/towerfield/internal/store"
	"github.com/samdwyer/towerfield/internal/ui"
	"github.com/samdwyer/towerfield/internal/world"
)

func newTestGame(t *testing.T, cols, rows int) (*Game, store.Storage) {
	t.Helper()
	dir := t.TempDir()

	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := ui.Wrap(sim)
	require.NoError(t, err)
	sim.SetSize(80, 24)
	t.Cleanup(screen.Close)

	st, err := store.NewJSONStore(filepath.Join(dir, "levels.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		Cols:      cols,
		Rows:      rows,
		TileWidth: 2,
		MapFile:   filepath.Join(dir, "level.map"),
	}
	g, err := newGame(cfg, st, screen)
	require.NoError(t, err)
	return g, st
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func click(x, y int) *tcell.EventMouse {
	return tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone)
}

func TestBindKey(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want binding
	}{
		{key('2'), binding{cmd: cmdSelect, tool: editor.ToolWall}},
		{key('6'), binding{cmd: cmdSelect, tool: editor.ToolExit}},
		{key('0'), binding{cmd: cmdSelect, tool: editor.ToolClearDirection}},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), binding{cmd: cmdSelect, tool: editor.ToolLeft}},
		{key('p'), binding{cmd: cmdRecalculate}},
		{key('P'), binding{cmd: cmdRecalculate}},
		{key(']'), binding{cmd: cmdZoomIn}},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), binding{cmd: cmdQuit}},
		{key('z'), binding{cmd: cmdNone}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bindKey(tt.ev), "key %q", tt.ev.Name())
	}
}

func TestNewGameSizes(t *testing.T) {
	g, _ := newTestGame(t, 12, 6)
	assert.Equal(t, 12, g.grid.Cols())
	assert.Equal(t, 6, g.grid.Rows())

	fit, _ := newTestGame(t, 0, 0)
	assert.Equal(t, 40, fit.grid.Cols())
	assert.Equal(t, 24-ui.HUDRows, fit.grid.Rows())
}

func TestPaintAndRecalculate(t *testing.T) {
	g, _ := newTestGame(t, 4, 1)
	ctx := context.Background()

	g.handleEvent(ctx, key('6'))
	g.handleEvent(ctx, click(7, 0)) // Tile (3, 0) with two cells per tile
	exit, ok := g.grid.Exit()
	require.True(t, ok)
	assert.Equal(t, world.Point{X: 3, Y: 0}, exit)
	assert.True(t, g.editor.Dirty())

	g.handleEvent(ctx, key('p'))
	assert.False(t, g.editor.Dirty())
	for x := 0; x < 3; x++ {
		assert.Equal(t, world.DirRight, g.grid.DirectionAt(x, 0), "tile %d", x)
	}
}

func TestRecalculateWithoutExit(t *testing.T) {
	g, _ := newTestGame(t, 3, 3)
	g.handleEvent(context.Background(), key('p'))
	assert.Contains(t, g.status, "no exit")
}

func TestClearSpawnsAndReset(t *testing.T) {
	g, _ := newTestGame(t, 5, 5)
	ctx := context.Background()

	g.handleEvent(ctx, key('5'))
	g.handleEvent(ctx, click(0, 0))
	g.handleEvent(ctx, click(2, 1))
	require.Len(t, g.grid.Spawnpoints(), 2)

	g.handleEvent(ctx, key('s'))
	assert.Empty(t, g.grid.Spawnpoints())
	assert.Equal(t, "spawnpoints cleared", g.status)
	assert.Equal(t, editor.ToolSpawn, g.editor.Selected(), "clearing spawns keeps the selected tool")

	g.handleEvent(ctx, key('2'))
	g.handleEvent(ctx, click(4, 4))
	require.Equal(t, world.TileWall, g.grid.TileAt(2, 4))

	g.handleEvent(ctx, key('r'))
	assert.Equal(t, world.TileEmpty, g.grid.TileAt(2, 4))
	assert.Equal(t, 5, g.grid.Cols())
}

func TestExportThenImport(t *testing.T) {
	g, st := newTestGame(t, 6, 3)
	ctx := context.Background()

	g.handleEvent(ctx, key('6'))
	g.handleEvent(ctx, click(10, 1))
	g.handleEvent(ctx, key('p'))
	want := g.grid.Clone()

	g.handleEvent(ctx, key('x'))
	data, err := os.ReadFile(g.cfg.MapFile)
	require.NoError(t, err)
	_, err = os.Stat(g.cfg.MapFile + ".share")
	require.NoError(t, err)

	rec, err := st.Load(ctx, "level")
	require.NoError(t, err)
	assert.Equal(t, string(data), rec.Data)

	g.handleEvent(ctx, key('r'))
	_, ok := g.grid.Exit()
	require.False(t, ok)

	g.handleEvent(ctx, key('m'))
	assert.True(t, g.grid.Equal(want), g.status)
}

func TestImportFallsBackToStore(t *testing.T) {
	g, st := newTestGame(t, 4, 4)
	ctx := context.Background()

	other := world.MustNewGrid(3, 2)
	require.NoError(t, other.SetExit(2, 1))
	s, err := mapcodec.Encode(other)
	require.NoError(t, err)
	_, err = st.Save(ctx, "level", s)
	require.NoError(t, err)

	g.handleEvent(ctx, key('m'))
	assert.True(t, g.grid.Equal(other), g.status)
}

func TestImportMalformedResets(t *testing.T) {
	g, _ := newTestGame(t, 4, 4)
	ctx := context.Background()

	g.handleEvent(ctx, key('2'))
	g.handleEvent(ctx, click(0, 0))
	require.NoError(t, os.WriteFile(g.cfg.MapFile, []byte(`{"grid": 1}`), 0o644))

	g.handleEvent(ctx, key('m'))
	assert.Equal(t, world.TileEmpty, g.grid.TileAt(0, 0))
	assert.Contains(t, g.status, "import failed")
}

func TestImportOversizedDimensionsResets(t *testing.T) {
	g, _ := newTestGame(t, 4, 4)
	ctx := context.Background()

	huge := `{"grid":[[0],[0]],"paths":[[null],[null]],"exit":[0,0],"spawnpoints":[],` +
		`"cols":2,"rows":4611686018427387904}`
	require.NoError(t, os.WriteFile(g.cfg.MapFile, []byte(huge), 0o644))

	require.NotPanics(t, func() { g.handleEvent(ctx, key('m')) })
	assert.Equal(t, 4, g.grid.Cols())
	assert.Equal(t, 4, g.grid.Rows())
	assert.Contains(t, g.status, "import failed")
}

func TestLoadSampleFitsTileWidth(t *testing.T) {
	g, _ := newTestGame(t, 4, 4)

	g.handleEvent(context.Background(), key('l'))
	assert.Equal(t, 8, g.grid.Cols())
	assert.Equal(t, 5, g.grid.Rows())
	assert.Equal(t, config.MaxTileWidth, g.tileWidth)
	assert.True(t, g.editor.Dirty())
}

func TestZoomRefitsGrid(t *testing.T) {
	g, _ := newTestGame(t, 0, 0)
	ctx := context.Background()

	g.handleEvent(ctx, key(']'))
	assert.Equal(t, 3, g.tileWidth)
	assert.Equal(t, 80/3, g.grid.Cols())

	g.tileWidth = config.MinTileWidth
	g.handleEvent(ctx, key('['))
	assert.Equal(t, config.MinTileWidth, g.tileWidth)
}

func TestQuit(t *testing.T) {
	g, _ := newTestGame(t, 2, 2)
	g.handleEvent(context.Background(), key('q'))
	assert.False(t, g.running)
}
