package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/config"
	"github.com/csheth/clipnote/internal/editor"
	"github.com/csheth/clipnote/internal/selection"
	"github.com/csheth/clipnote/internal/source"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Source   source.Document
	Settings *config.Provider
	Capture  *capture.Service
	Logger   zerolog.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	if cfg.Settings == nil {
		cfg.Settings = config.NewProvider("", config.Default())
	}

	paletteInput := textinput.New()
	paletteInput.Placeholder = "Type to filter commands…"
	paletteInput.CharLimit = 80
	paletteInput.Width = 50

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	layout := newPageLayout()
	vp := viewport.New(layout.viewportWidth, layout.viewportHeight)
	vp.MouseWheelEnabled = true

	m := &model{
		config:       cfg,
		stage:        stageEditing,
		buffer:       editor.NewBuffer(cfg.Source.Text),
		tracker:      selection.NewTracker(),
		paletteInput: paletteInput,
		spinner:      spin,
		viewport:     vp,
		layout:       layout,
		jobs:         newJobBus(cfg.Logger),
		infoMessage:  "Ctrl+K opens the command palette, F1 shows the cheatsheet.",
	}
	if cfg.Source.ReadOnly {
		m.infoMessage = "Imported read-only document. Extracted text is removed from this view only."
	}
	m.markViewportDirty()
	return m
}

type pendingExtract struct {
	handle   selection.Handle
	revision int
	rng      selection.Range
}

type model struct {
	config Config
	stage  stage

	buffer   *editor.Buffer
	tracker  *selection.Tracker
	viewport viewport.Model
	spinner  spinner.Model
	layout   pageLayout
	jobs     *jobBus

	paletteInput   textinput.Model
	paletteMatches []paletteCommand
	paletteCursor  int

	pending       *pendingExtract
	infoMessage   string
	errorMessage  string
	helpVisible   bool
	confirmQuit   bool
	viewportDirty bool
}

func (m *model) settings() config.Config {
	return m.config.Settings.Current()
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case extractResultMsg:
		return m.finishExtract(msg)
	case sourceSavedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("save failed: %v", msg.err)
			m.infoMessage = "Source not saved."
			return m, nil
		}
		if msg.revision == m.buffer.Revision() {
			m.buffer.MarkClean()
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Saved %s", m.config.Source.Path)
		return m, nil
	case configReloadedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("config error: %v", msg.err)
			m.infoMessage = "Keeping the previous configuration."
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Configuration reloaded; target is %s (%s).", msg.cfg.Target.Path, msg.cfg.Policy().Mode)
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == keyQuit {
		if m.buffer.Dirty() && !m.confirmQuit && m.stage != stageSaving {
			m.confirmQuit = true
			m.infoMessage = "Unsaved changes. Press Ctrl+C again to quit without saving, Ctrl+S to save."
			return m, nil
		}
		return m, tea.Quit
	}
	m.confirmQuit = false

	switch m.stage {
	case stageSaving:
		return m, nil
	case stagePalette:
		return m.handlePaletteKey(key)
	default:
		return m.handleEditorKey(key)
	}
}

func (m *model) handleEditorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.settings().Keys
	binding := key.String()
	// Opening the palette keeps the tracker so select-all run from the
	// palette can escalate; Trigger still drops a stale paragraph.
	if binding != keys.SelectAll && binding != keys.Palette {
		m.tracker.Reset()
	}

	switch binding {
	case keys.SelectAll:
		m.actionSelectAll()
		return m, nil
	case keys.Extract:
		return m, m.actionExtractCmd()
	case keys.Palette:
		m.openPalette()
		return m, textinput.Blink
	case keySaveSource:
		return m, m.actionSaveSourceCmd()
	case keyReloadConfig:
		return m, m.actionReloadConfigCmd()
	case keyToggleHelp:
		m.toggleHelp()
		return m, nil
	}

	if !m.applyEditKey(key) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	m.errorMessage = ""
	m.markViewportDirty()
	m.ensureCursorVisible()
	return m, nil
}

var motionKeys = map[string]struct {
	motion editor.Motion
	extend bool
}{
	"left":        {editor.MoveLeft, false},
	"right":       {editor.MoveRight, false},
	"up":          {editor.MoveUp, false},
	"down":        {editor.MoveDown, false},
	"home":        {editor.MoveLineStart, false},
	"end":         {editor.MoveLineEnd, false},
	"pgup":        {editor.MovePageUp, false},
	"pgdown":      {editor.MovePageDown, false},
	"ctrl+home":   {editor.MoveTop, false},
	"ctrl+end":    {editor.MoveBottom, false},
	"shift+left":  {editor.MoveLeft, true},
	"shift+right": {editor.MoveRight, true},
	"shift+up":    {editor.MoveUp, true},
	"shift+down":  {editor.MoveDown, true},
	"shift+home":  {editor.MoveLineStart, true},
	"shift+end":   {editor.MoveLineEnd, true},
}

// applyEditKey performs cursor motion and text editing. It reports false for
// keys the editor does not handle.
func (m *model) applyEditKey(key tea.KeyMsg) bool {
	if motion, ok := motionKeys[key.String()]; ok {
		m.buffer.Move(motion.motion, motion.extend)
		return true
	}
	switch key.Type {
	case tea.KeyEsc:
		m.buffer.ClearSelection()
	case tea.KeyEnter:
		m.buffer.InsertText("\n")
	case tea.KeyTab:
		m.buffer.InsertText("\t")
	case tea.KeySpace:
		m.buffer.InsertText(" ")
	case tea.KeyBackspace:
		m.buffer.Backspace()
	case tea.KeyDelete:
		m.buffer.Delete()
	case tea.KeyRunes:
		m.buffer.InsertText(string(key.Runes))
	default:
		return false
	}
	return true
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.stage != stageEditing || m.helpVisible {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
		m.tracker.Reset()
		if msg.Type != tea.MouseLeft {
			return m, nil
		}
		if pos, ok := m.positionAt(msg.X, msg.Y); ok {
			m.buffer.SetCursor(pos)
			m.markViewportDirty()
		}
		return m, nil
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// positionAt maps a terminal cell to a buffer position.
func (m *model) positionAt(x, y int) (selection.Position, bool) {
	top := lipgloss.Height(m.headerView()) + 1
	row := y - top
	if row < 0 || row >= m.viewport.Height {
		return selection.Position{}, false
	}
	line := m.viewport.YOffset + row
	if line >= m.buffer.LineCount() {
		line = m.buffer.LineCount() - 1
	}
	col := x - gutterWidth(m.buffer.LineCount())
	if col < 0 {
		col = 0
	}
	return selection.Position{Line: line, Column: col}, true
}

// actionSelectAll runs the paragraph/everything state machine against the
// buffer and applies its decision.
func (m *model) actionSelectAll() {
	action := m.tracker.Trigger(m.buffer.Handle(), m.buffer, m.buffer.Cursor(), m.buffer.Selection())
	switch action.Kind {
	case selection.ActionSelectAll:
		m.buffer.SelectAll()
		m.infoMessage = "Selected the whole document."
	default:
		m.buffer.SetSelection(action.Range)
		lines := action.Range.To.Line - action.Range.From.Line + 1
		m.infoMessage = fmt.Sprintf("Selected paragraph (%d line(s)). Press %s again for everything.", lines, m.settings().Keys.SelectAll)
	}
	m.config.Logger.Debug().Stringer("surface", m.buffer.Handle()).Str("action", action.Kind.String()).Stringer("range", action.Range).Msg("select-all trigger")
	m.markViewportDirty()
	m.ensureCursorVisible()
}

func (m *model) actionExtractCmd() tea.Cmd {
	if m.config.Capture == nil {
		m.errorMessage = "Extract is not configured."
		return nil
	}
	text := m.buffer.SelectedText()
	if text == "" {
		m.errorMessage = capture.Describe(capture.ErrEmptySelection)
		return nil
	}
	settings := m.settings().Capture()
	m.pending = &pendingExtract{
		handle:   m.buffer.Handle(),
		revision: m.buffer.Revision(),
		rng:      m.buffer.Selection(),
	}
	m.stage = stageSaving
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Moving selection to %s…", settings.TargetPath)
	req := capture.Request{SourceLabel: m.config.Source.Label, Text: text}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindExtract, extractJob(m.config.Capture, settings, req)))
}

// finishExtract clears the source selection only once the target document
// has been written.
func (m *model) finishExtract(msg extractResultMsg) (tea.Model, tea.Cmd) {
	m.stage = stageEditing
	pending := m.pending
	m.pending = nil
	if msg.err != nil {
		m.errorMessage = capture.Describe(msg.err)
		m.infoMessage = "Selection kept."
		if !errors.Is(msg.err, capture.ErrFilterRejected) {
			m.config.Logger.Warn().Err(msg.err).Msg("extract failed")
		}
		return m, nil
	}
	if pending == nil || !pending.handle.Same(m.buffer.Handle()) || pending.revision != m.buffer.Revision() {
		m.errorMessage = "Document changed while extracting; the source text was left in place."
		return m, nil
	}
	m.buffer.SetSelection(pending.rng)
	m.buffer.ReplaceSelection("")
	m.tracker.Reset()
	m.errorMessage = ""
	m.infoMessage = capture.Succeeded(msg.result)
	m.markViewportDirty()
	m.ensureCursorVisible()
	return m, nil
}

func (m *model) actionSaveSourceCmd() tea.Cmd {
	if m.config.Source.ReadOnly {
		m.errorMessage = "This document is read-only; it cannot be saved back."
		return nil
	}
	if m.config.Source.Path == "" {
		m.errorMessage = "No file to save to."
		return nil
	}
	m.infoMessage = "Saving source…"
	return m.jobs.Start(jobKindSave, saveSourceJob(m.config.Source, m.buffer.Text(), m.buffer.Revision()))
}

func (m *model) actionReloadConfigCmd() tea.Cmd {
	if !m.commandAvailable(actionReloadConfig) {
		m.errorMessage = "No config file to reload."
		return nil
	}
	m.infoMessage = "Reloading configuration…"
	return m.jobs.Start(jobKindReload, reloadConfigJob(m.config.Settings))
}

func (m *model) toggleHelp() {
	m.helpVisible = !m.helpVisible
	if m.helpVisible {
		m.infoMessage = "Cheatsheet open. Press F1 to hide."
	} else {
		m.infoMessage = "Cheatsheet hidden."
	}
}

func (m *model) openPalette() {
	m.stage = stagePalette
	m.paletteInput.SetValue("")
	m.paletteInput.Focus()
	m.paletteCursor = 0
	m.paletteMatches = m.paletteCommands()
}

func (m *model) closePalette() {
	m.stage = stageEditing
	m.paletteInput.Blur()
	m.paletteMatches = nil
}

func (m *model) handlePaletteKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.closePalette()
		return m, nil
	case tea.KeyUp:
		if m.paletteCursor > 0 {
			m.paletteCursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.paletteCursor < len(m.paletteMatches)-1 {
			m.paletteCursor++
		}
		return m, nil
	case tea.KeyEnter:
		if len(m.paletteMatches) == 0 {
			return m, nil
		}
		chosen := m.paletteMatches[m.paletteCursor]
		m.closePalette()
		return m, m.runPaletteAction(chosen.action)
	}

	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(key)
	m.paletteMatches = filterPalette(m.paletteCommands(), m.paletteInput.Value())
	if m.paletteCursor >= len(m.paletteMatches) {
		m.paletteCursor = 0
	}
	return m, cmd
}

func (m *model) runPaletteAction(action paletteAction) tea.Cmd {
	switch action {
	case actionExtract:
		return m.actionExtractCmd()
	case actionSelectAll:
		m.actionSelectAll()
	case actionSaveSource:
		return m.actionSaveSourceCmd()
	case actionReloadConfig:
		return m.actionReloadConfigCmd()
	case actionToggleHelp:
		m.toggleHelp()
	case actionQuit:
		return tea.Quit
	}
	return nil
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.viewport.SetContent(renderDocument(m.buffer, m.viewport.Width))
		m.viewportDirty = false
	}
}

func (m *model) ensureCursorVisible() {
	line := m.buffer.Cursor().Line
	height := m.viewport.Height
	if height <= 0 {
		return
	}
	m.refreshViewportIfDirty()
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+height:
		m.viewport.SetYOffset(line - height + 1)
	}
}
