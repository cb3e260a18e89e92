package tui

import "github.com/csheth/clipnote/internal/config"

type stage int

const (
	stageEditing stage = iota
	stageSaving
	stagePalette
)

const heroTagline = "Select a paragraph, then everything. Move it to your notes."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 2
	minViewportHeight         = 5
)

const (
	keySaveSource   = config.KeySaveSource
	keyReloadConfig = config.KeyReloadConfig
	keyToggleHelp   = config.KeyToggleHelp
	keyQuit         = config.KeyQuit
)
