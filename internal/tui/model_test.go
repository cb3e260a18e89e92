package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/config"
	"github.com/csheth/clipnote/internal/notes"
	"github.com/csheth/clipnote/internal/selection"
	"github.com/csheth/clipnote/internal/source"
)

const fixtureText = "alpha one\nalpha two\n\nbeta one\nbeta two\nbeta three\n\ngamma"

var fixedNow = time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)

func newTestModelWith(t *testing.T, text string, store *notes.MemoryStore, cfg config.Config) *model {
	t.Helper()
	svc := capture.NewService(store, capture.WithClock(func() time.Time { return fixedNow }), capture.WithLogger(zerolog.Nop()))
	teaModel, ok := New(Config{
		Source:   source.Document{Path: "draft.md", Label: "draft", Text: text},
		Settings: config.NewProvider("", cfg),
		Capture:  svc,
		Logger:   zerolog.Nop(),
	}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func ctrlKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func moveCursor(m *model, line, col int) {
	m.buffer.SetCursor(selection.Position{Line: line, Column: col})
}

// runExtract performs the capture the extract command would schedule and
// feeds the result back into the model.
func runExtract(t *testing.T, m *model) {
	t.Helper()
	if m.stage != stageSaving {
		t.Fatalf("extract should enter the saving stage, got %v (err=%q)", m.stage, m.errorMessage)
	}
	req := capture.Request{SourceLabel: m.config.Source.Label, Text: m.buffer.SelectedText()}
	result, err := m.config.Capture.Extract(context.Background(), m.settings().Capture(), req)
	m.Update(jobResultEnvelope{Payload: extractResultMsg{result: result, err: err}})
}

func TestSelectAllEscalatesFromParagraphToDocument(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 4, 2)

	m.Update(ctrlKey(tea.KeyCtrlA))
	sel := m.buffer.Selection()
	if sel.From.Line != 3 || sel.To.Line != 5 || sel.From.Column != 0 || sel.To.Column != len("beta three") {
		t.Fatalf("first press should select the paragraph, got %s", sel)
	}
	if m.tracker.State().Kind != selection.StateParagraphSelected {
		t.Fatalf("tracker should remember the paragraph, got %v", m.tracker.State().Kind)
	}

	m.Update(ctrlKey(tea.KeyCtrlA))
	if got := m.buffer.SelectedText(); got != fixtureText {
		t.Fatalf("second press should select everything, got %q", got)
	}
	if m.tracker.State().Kind != selection.StateIdle {
		t.Fatal("tracker should return to idle after escalating")
	}

	m.Update(ctrlKey(tea.KeyCtrlA))
	if got := m.buffer.SelectedText(); got != "gamma" {
		t.Fatalf("third press should start over with the paragraph at the cursor, got %q", got)
	}
	if m.tracker.State().Kind != selection.StateParagraphSelected {
		t.Fatal("third press should store a paragraph again")
	}
}

func TestOtherKeysResetTracker(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 0, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))

	m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	if m.tracker.State().Kind != selection.StateIdle {
		t.Fatal("a non select-all key should reset the tracker")
	}

	m.Update(ctrlKey(tea.KeyCtrlA))
	if m.buffer.SelectedText() == fixtureText {
		t.Fatal("select-all after another key should start with a paragraph")
	}
}

func TestMouseClickResetsTracker(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 0, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))

	m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: 10, Y: 3})
	if m.tracker.State().Kind != selection.StateIdle {
		t.Fatal("mouse click should reset the tracker")
	}
	if m.buffer.HasSelection() {
		t.Fatal("mouse click should clear the selection")
	}
}

func TestAnyMouseButtonResetsTracker(t *testing.T) {
	for _, button := range []tea.MouseEventType{tea.MouseRight, tea.MouseMiddle} {
		m := newTestModel(t)
		moveCursor(m, 0, 0)
		m.Update(ctrlKey(tea.KeyCtrlA))
		paragraph := m.buffer.SelectedText()

		m.Update(tea.MouseMsg{Type: button, X: 10, Y: 3})
		if m.tracker.State().Kind != selection.StateIdle {
			t.Fatalf("button %v left the tracker in %v", button, m.tracker.State().Kind)
		}
		m.Update(ctrlKey(tea.KeyCtrlA))
		if got := m.buffer.SelectedText(); got != paragraph {
			t.Fatalf("button %v: select-all after a click should pick the paragraph again, got %q", button, got)
		}
	}
}

func TestEditedParagraphIsRecomputed(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 0, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))

	// Shrink the selection without a key press so only staleness can stop
	// the escalation.
	m.buffer.SetSelection(selection.Range{To: selection.Position{Line: 0, Column: 5}})
	m.Update(ctrlKey(tea.KeyCtrlA))
	if got := m.buffer.SelectedText(); got != "alpha one\nalpha two" {
		t.Fatalf("stale selection should re-select the paragraph, got %q", got)
	}
}

func TestExtractMovesSelectionIntoTarget(t *testing.T) {
	store := notes.NewMemoryStore(map[string]string{"inbox.md": "# Inbox"})
	m := newTestModelWith(t, fixtureText, store, config.Default())
	moveCursor(m, 3, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))

	m.Update(ctrlKey(tea.KeyCtrlX))
	if m.pending == nil {
		t.Fatal("extract should remember the pending range")
	}
	runExtract(t, m)

	doc, ok := store.Document("inbox.md")
	if !ok {
		t.Fatal("target document was not written")
	}
	want := "# Inbox\n\n<sub>[[draft]] | 2024-03-05 | 09:07:</sub>\nbeta one\nbeta two\nbeta three"
	if doc != want {
		t.Fatalf("target mismatch:\n got %q\nwant %q", doc, want)
	}
	if got := m.buffer.Text(); got != "alpha one\nalpha two\n\n\n\ngamma" {
		t.Fatalf("selection not removed from source, got %q", got)
	}
	if m.stage != stageEditing {
		t.Fatalf("stage should return to editing, got %v", m.stage)
	}
	if !strings.Contains(m.infoMessage, "inbox.md") {
		t.Fatalf("success message should name the target, got %q", m.infoMessage)
	}
	if m.tracker.State().Kind != selection.StateIdle {
		t.Fatal("tracker should reset after a successful extract")
	}
}

func TestExtractWithoutSelectionReportsError(t *testing.T) {
	store := notes.NewMemoryStore(nil)
	m := newTestModelWith(t, fixtureText, store, config.Default())

	if cmd := m.actionExtractCmd(); cmd != nil {
		t.Fatalf("extract without selection should not schedule work, got %T", cmd)
	}
	if m.errorMessage != capture.Describe(capture.ErrEmptySelection) {
		t.Fatalf("unexpected error message %q", m.errorMessage)
	}
	if _, ok := store.Document("inbox.md"); ok {
		t.Fatal("target should not be created")
	}
}

func TestExtractRejectedByFilterKeepsSelection(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Pattern = "^TODO"
	store := notes.NewMemoryStore(nil)
	m := newTestModelWith(t, fixtureText, store, cfg)
	moveCursor(m, 0, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))
	selected := m.buffer.SelectedText()

	m.Update(ctrlKey(tea.KeyCtrlX))
	runExtract(t, m)

	if m.errorMessage != capture.Describe(capture.ErrFilterRejected) {
		t.Fatalf("unexpected error message %q", m.errorMessage)
	}
	if got := m.buffer.SelectedText(); got != selected {
		t.Fatalf("selection should be untouched, got %q", got)
	}
	if m.buffer.Dirty() {
		t.Fatal("source should not change when the filter rejects")
	}
	if _, ok := store.Document("inbox.md"); ok {
		t.Fatal("target should not be written")
	}
}

func TestExtractWriteFailureKeepsSource(t *testing.T) {
	store := notes.NewMemoryStore(nil)
	store.WriteErr = errors.New("disk full")
	m := newTestModelWith(t, fixtureText, store, config.Default())
	moveCursor(m, 7, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))

	m.Update(ctrlKey(tea.KeyCtrlX))
	runExtract(t, m)

	if !strings.Contains(m.errorMessage, "disk full") {
		t.Fatalf("error should carry the cause, got %q", m.errorMessage)
	}
	if got := m.buffer.Text(); got != fixtureText {
		t.Fatalf("source changed after failed write: %q", got)
	}
}

func TestExtractSkipsRemovalWhenBufferChanged(t *testing.T) {
	store := notes.NewMemoryStore(nil)
	m := newTestModelWith(t, fixtureText, store, config.Default())
	moveCursor(m, 7, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))
	m.Update(ctrlKey(tea.KeyCtrlX))
	req := capture.Request{SourceLabel: "draft", Text: m.buffer.SelectedText()}
	result, err := m.config.Capture.Extract(context.Background(), m.settings().Capture(), req)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	m.buffer.InsertText("!")
	edited := m.buffer.Text()
	m.Update(extractResultMsg{result: result})

	if got := m.buffer.Text(); got != edited {
		t.Fatalf("buffer should not be modified after a concurrent edit, got %q", got)
	}
	if m.errorMessage == "" {
		t.Fatal("expected a warning about the changed document")
	}
}

func TestInputBlockedWhileExtracting(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 0, 0)
	m.Update(ctrlKey(tea.KeyCtrlA))
	m.Update(ctrlKey(tea.KeyCtrlX))
	before := m.buffer.Text()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.buffer.Text() != before {
		t.Fatal("typing should be ignored while an extract is running")
	}
}

func TestTypingEditsBuffer(t *testing.T) {
	m := newTestModel(t)
	moveCursor(m, 7, 5)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	m.Update(ctrlKey(tea.KeyEnter))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("delta")})

	if got := m.buffer.Line(8); got != "delta" {
		t.Fatalf("expected new line, got %q", got)
	}
	if got := m.buffer.Line(7); got != "gamma!" {
		t.Fatalf("expected edited line, got %q", got)
	}
	if !m.buffer.Dirty() {
		t.Fatal("buffer should be dirty after typing")
	}
}

func TestQuitAsksForConfirmationWhenDirty(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if _, cmd := m.Update(ctrlKey(tea.KeyCtrlC)); cmd != nil {
		t.Fatal("first ctrl+c with unsaved changes should not quit")
	}
	_, cmd := m.Update(ctrlKey(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected a quit message")
	}
}

func TestSourceSavedMarksClean(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	m.Update(sourceSavedMsg{revision: m.buffer.Revision()})
	if m.buffer.Dirty() {
		t.Fatal("saved revision should clear the dirty flag")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m.Update(sourceSavedMsg{revision: m.buffer.Revision() - 1})
	if !m.buffer.Dirty() {
		t.Fatal("an older save should not clear newer edits")
	}
}

func TestSaveRefusedForReadOnlySource(t *testing.T) {
	m := newTestModel(t)
	m.config.Source.ReadOnly = true
	if cmd := m.actionSaveSourceCmd(); cmd != nil {
		t.Fatal("read-only source should not schedule a save")
	}
	if !strings.Contains(m.errorMessage, "read-only") {
		t.Fatalf("unexpected error %q", m.errorMessage)
	}
}

func TestConfigReloadedMessage(t *testing.T) {
	m := newTestModel(t)
	cfg := config.Default()
	cfg.Target.Path = "journal.md"

	m.Update(ConfigReloaded(cfg, nil))
	if !strings.Contains(m.infoMessage, "journal.md") {
		t.Fatalf("reload message should name the new target, got %q", m.infoMessage)
	}

	m.Update(ConfigReloaded(config.Config{}, errors.New("bad yaml")))
	if !strings.Contains(m.errorMessage, "bad yaml") {
		t.Fatalf("reload error not surfaced, got %q", m.errorMessage)
	}
}

func TestWindowResizeUpdatesViewport(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.viewport.Width != 98 || m.viewport.Height != 23 {
		t.Fatalf("viewport not resized: %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestViewShowsDocumentAndTarget(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"clipnote", "draft", "beta three", "inbox.md"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
