package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/config"
	"github.com/csheth/clipnote/internal/source"
)

type paletteAction int

const (
	actionExtract paletteAction = iota
	actionSelectAll
	actionSaveSource
	actionReloadConfig
	actionToggleHelp
	actionQuit
)

type paletteCommand struct {
	action      paletteAction
	title       string
	description string
	shortcut    string
}

func (m *model) paletteCommands() []paletteCommand {
	keys := m.settings().Keys
	return []paletteCommand{
		{action: actionExtract, title: "Extract selection", description: "Move the selection into " + m.settings().Target.Path, shortcut: keys.Extract},
		{action: actionSelectAll, title: "Custom select-all", description: "Select the paragraph, press again for the whole document", shortcut: keys.SelectAll},
		{action: actionSaveSource, title: "Save source", description: "Write the edited document back to disk", shortcut: keySaveSource},
		{action: actionReloadConfig, title: "Reload config", description: "Re-read the config file", shortcut: keyReloadConfig},
		{action: actionToggleHelp, title: "Toggle help", description: "Show or hide the key cheatsheet", shortcut: keyToggleHelp},
		{action: actionQuit, title: "Quit", description: "Leave clipnote", shortcut: keyQuit},
	}
}

func (m *model) commandAvailable(action paletteAction) bool {
	switch action {
	case actionExtract:
		return m.buffer.HasSelection() && m.config.Capture != nil
	case actionSaveSource:
		return !m.config.Source.ReadOnly && m.config.Source.Path != "" && m.buffer.Dirty()
	case actionReloadConfig:
		return m.config.Settings != nil && m.config.Settings.Path() != ""
	default:
		return true
	}
}

func filterPalette(commands []paletteCommand, query string) []paletteCommand {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return commands
	}
	matches := make([]paletteCommand, 0, len(commands))
	for _, cmd := range commands {
		haystack := strings.ToLower(cmd.title + " " + cmd.description)
		if strings.Contains(haystack, query) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

type extractResultMsg struct {
	result capture.Result
	err    error
}

type sourceSavedMsg struct {
	revision int
	err      error
}

type configReloadedMsg struct {
	cfg config.Config
	err error
}

// ConfigReloaded builds the message the program expects when the config file
// changes outside the TUI.
func ConfigReloaded(cfg config.Config, err error) tea.Msg {
	return configReloadedMsg{cfg: cfg, err: err}
}

func extractJob(svc *capture.Service, settings capture.Settings, req capture.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := svc.Extract(ctx, settings, req)
		return extractResultMsg{result: result, err: err}, err
	}
}

func saveSourceJob(doc source.Document, text string, revision int) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := source.Save(doc, text)
		return sourceSavedMsg{revision: revision, err: err}, err
	}
}

func reloadConfigJob(provider *config.Provider) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		cfg, err := provider.Reload()
		return configReloadedMsg{cfg: cfg, err: err}, err
	}
}
