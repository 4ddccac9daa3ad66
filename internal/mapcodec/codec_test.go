package mapcodec

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/towerfield/internal/flowfield"
	"github.com/samdwyer/towerfield/internal/world"
)

func sampleGrid(t *testing.T) *world.Grid {
	t.Helper()
	g := world.MustNewGrid(4, 3)
	require.NoError(t, g.SetTile(1, 0, world.TileWall))
	require.NoError(t, g.SetTile(1, 1, world.TileTower))
	require.NoError(t, g.SetTile(2, 2, world.TilePath))
	require.NoError(t, g.SetExit(3, 1))
	_, err := g.AddSpawnpoint(0, 2)
	require.NoError(t, err)
	_, err = g.AddSpawnpoint(0, 0)
	require.NoError(t, err)
	require.NoError(t, g.SetWaves(json.RawMessage(`[{"enemy":"goblin","count":10}]`)))
	flowfield.Recalculate(context.Background(), g)
	// A manual override must survive the round trip verbatim
	require.NoError(t, g.SetDirection(0, 0, world.DirDown))
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGrid(t)

	s, err := Encode(g)
	require.NoError(t, err)

	decoded, err := Decode(s)
	require.NoError(t, err)
	assert.True(t, g.Equal(decoded), "decoded grid differs from original")
	assert.Equal(t, world.DirDown, decoded.DirectionAt(0, 0))
}

func TestRoundTripWithoutWaves(t *testing.T) {
	g := world.MustNewGrid(2, 2)
	require.NoError(t, g.SetExit(0, 0))

	s, err := Encode(g)
	require.NoError(t, err)
	assert.Contains(t, s, `"waves":null`)

	decoded, err := Decode(s)
	require.NoError(t, err)
	assert.True(t, g.Equal(decoded))
	assert.Nil(t, decoded.Waves())
}

func TestEncodeLayout(t *testing.T) {
	g := world.MustNewGrid(3, 1)
	require.NoError(t, g.SetTile(1, 0, world.TilePath))
	require.NoError(t, g.SetExit(2, 0))
	flowfield.Recalculate(context.Background(), g)

	s, err := Encode(g)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	assert.Equal(t, []any{[]any{0.0}, []any{2.0}, []any{0.0}}, m["grid"])
	assert.Equal(t, []any{[]any{"right"}, []any{"right"}, []any{nil}}, m["paths"])
	assert.Equal(t, []any{2.0, 0.0}, m["exit"])
	assert.Equal(t, []any{}, m["spawnpoints"])
	assert.Equal(t, 3.0, m["cols"])
	assert.Equal(t, 1.0, m["rows"])
}

func TestEncodeRequiresExit(t *testing.T) {
	_, err := Encode(world.MustNewGrid(2, 2))
	assert.ErrorIs(t, err, ErrNoExit)
}

func TestDecodeOriginalMapString(t *testing.T) {
	s := `{"grid":[[0,0],[1,0]],"paths":[["down","right"],[null,null]],"exit":[1,1],` +
		`"spawnpoints":[[0,0]],"cols":2,"rows":2,"waves":5}`

	g, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, world.TileWall, g.TileAt(1, 0))
	assert.Equal(t, world.DirDown, g.DirectionAt(0, 0))
	assert.Equal(t, world.DirRight, g.DirectionAt(0, 1))
	exit, ok := g.Exit()
	assert.True(t, ok)
	assert.Equal(t, world.Point{X: 1, Y: 1}, exit)
	assert.Equal(t, []world.Point{{X: 0, Y: 0}}, g.Spawnpoints())
	assert.Equal(t, "5", string(g.Waves()))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	valid := map[string]any{
		"grid":        [][]int{{0, 0}, {0, 0}},
		"paths":       [][]any{{nil, nil}, {nil, nil}},
		"exit":        []int{1, 1},
		"spawnpoints": [][]int{{0, 0}},
		"cols":        2,
		"rows":        2,
		"waves":       nil,
	}

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing grid", func(m map[string]any) { delete(m, "grid") }},
		{"missing exit", func(m map[string]any) { delete(m, "exit") }},
		{"null exit", func(m map[string]any) { m["exit"] = nil }},
		{"short exit", func(m map[string]any) { m["exit"] = []int{1} }},
		{"exit out of bounds", func(m map[string]any) { m["exit"] = []int{2, 0} }},
		{"zero cols", func(m map[string]any) { m["cols"] = 0 }},
		{"cols mismatch", func(m map[string]any) { m["cols"] = 3 }},
		{"rows mismatch", func(m map[string]any) { m["rows"] = 3 }},
		{"ragged column", func(m map[string]any) { m["grid"] = [][]int{{0, 0}, {0}} }},
		{"unknown tile", func(m map[string]any) { m["grid"] = [][]int{{0, 7}, {0, 0}} }},
		{"negative tile", func(m map[string]any) { m["grid"] = [][]int{{0, -1}, {0, 0}} }},
		{"unknown direction", func(m map[string]any) { m["paths"] = [][]any{{"north", nil}, {nil, nil}} }},
		{"direction on wall", func(m map[string]any) {
			m["grid"] = [][]int{{1, 0}, {0, 0}}
			m["paths"] = [][]any{{"down", nil}, {nil, nil}}
		}},
		{"duplicate spawnpoint", func(m map[string]any) { m["spawnpoints"] = [][]int{{0, 0}, {0, 0}} }},
		{"spawnpoint out of bounds", func(m map[string]any) { m["spawnpoints"] = [][]int{{0, 5}} }},
		{"wrong type", func(m map[string]any) { m["cols"] = "two" }},
		{"rows overflow cell count", func(m map[string]any) { m["rows"] = 4611686018427387904 }},
		{"rows far beyond data", func(m map[string]any) { m["rows"] = 1000000000 }},
		{"cols far beyond data", func(m map[string]any) {
			m["cols"] = 1000000000
			m["rows"] = 1
		}},
	}

	base, err := json.Marshal(valid)
	require.NoError(t, err)
	_, err = Decode(string(base))
	require.NoError(t, err, "baseline map must decode")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]any, len(valid))
			for k, v := range valid {
				m[k] = v
			}
			tt.mutate(m)
			data, err := json.Marshal(m)
			require.NoError(t, err)

			g, err := Decode(string(data))
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, g)
		})
	}

	for _, s := range []string{"", "not json", "[]", `{"grid":`} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", s)
	}
}

func TestDecodeDropsDirectionOnExit(t *testing.T) {
	s := `{"grid":[[0,0],[0,0]],"paths":[["down",null],[null,"up"]],"exit":[1,1],` +
		`"spawnpoints":[],"cols":2,"rows":2}`

	g, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, world.DirNone, g.DirectionAt(1, 1))
	assert.Equal(t, world.DirDown, g.DirectionAt(0, 0))
}

func TestShareCodeRoundTrip(t *testing.T) {
	g := sampleGrid(t)

	code, err := EncodeShareCode(g)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, ShareCodePrefix))

	decoded, err := DecodeShareCode(code)
	require.NoError(t, err)
	assert.True(t, g.Equal(decoded))

	parsed, err := Parse(code)
	require.NoError(t, err)
	assert.True(t, g.Equal(parsed))
}

func TestDecodeShareCodeRejectsGarbage(t *testing.T) {
	for _, code := range []string{"abc", ShareCodePrefix + "!!!", ShareCodePrefix + "AAAA"} {
		_, err := DecodeShareCode(code)
		assert.ErrorIs(t, err, ErrMalformed, "code %q", code)
	}
}

func TestZstdCodersBuild(t *testing.T) {
	var enc, dec any
	require.NotPanics(t, func() {
		enc = mustNewEncoder()
		dec = mustNewDecoder()
	})
	assert.NotNil(t, enc)
	assert.NotNil(t, dec)
}

func TestImportReplacesOnSuccess(t *testing.T) {
	src := sampleGrid(t)
	s, err := Encode(src)
	require.NoError(t, err)

	g := world.MustNewGrid(10, 10)
	require.NoError(t, Import(context.Background(), g, s))
	assert.True(t, g.Equal(src))
}

func TestImportFallsBackToReset(t *testing.T) {
	g := sampleGrid(t)

	err := Import(context.Background(), g, `{"grid":[[0]],"cols":1}`)
	require.ErrorIs(t, err, ErrMalformed)

	assert.True(t, g.Equal(func() *world.Grid {
		fresh := world.MustNewGrid(4, 3)
		require.NoError(t, fresh.SetWaves(g.Waves()))
		return fresh
	}()), "failed import must leave a freshly reset grid")
	_, ok := g.Exit()
	assert.False(t, ok)
	assert.Empty(t, g.Spawnpoints())
}
