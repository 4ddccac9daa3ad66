// Package gamedata provides the editor's embedded data: the color palette and a sample level.
package gamedata

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
