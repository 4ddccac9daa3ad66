package game

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/towerfield/internal/editor"
)

// command is an editor-level action bound to a key.
type command int

const (
	cmdNone command = iota
	cmdSelect
	cmdRecalculate
	cmdReset
	cmdClearSpawns
	cmdExport
	cmdImport
	cmdSample
	cmdZoomOut
	cmdZoomIn
	cmdQuit
)

// binding is the result of looking up a key.
type binding struct {
	cmd  command
	tool editor.Tool // Only for cmdSelect
}

var toolKeys = map[rune]editor.Tool{
	'0': editor.ToolClearDirection,
	'1': editor.ToolEmpty,
	'2': editor.ToolWall,
	'3': editor.ToolPath,
	'4': editor.ToolTower,
	'5': editor.ToolSpawn,
	'6': editor.ToolExit,
}

var commandKeys = map[rune]command{
	'p': cmdRecalculate,
	'r': cmdReset,
	's': cmdClearSpawns,
	'x': cmdExport,
	'm': cmdImport,
	'l': cmdSample,
	'[': cmdZoomOut,
	']': cmdZoomIn,
	'q': cmdQuit,
}

// bindKey maps a key press to a command.
func bindKey(ev *tcell.EventKey) binding {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return binding{cmd: cmdQuit}
	case tcell.KeyUp:
		return binding{cmd: cmdSelect, tool: editor.ToolUp}
	case tcell.KeyDown:
		return binding{cmd: cmdSelect, tool: editor.ToolDown}
	case tcell.KeyLeft:
		return binding{cmd: cmdSelect, tool: editor.ToolLeft}
	case tcell.KeyRight:
		return binding{cmd: cmdSelect, tool: editor.ToolRight}
	case tcell.KeyRune:
		r := ev.Rune()
		if tool, ok := toolKeys[r]; ok {
			return binding{cmd: cmdSelect, tool: tool}
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if cmd, ok := commandKeys[r]; ok {
			return binding{cmd: cmd}
		}
	}
	return binding{cmd: cmdNone}
}
