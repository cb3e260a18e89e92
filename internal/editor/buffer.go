// Package editor implements the line-based editing surface shown by the TUI.
package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/csheth/clipnote/internal/selection"
)

type (
	Position = selection.Position
	Range    = selection.Range
)

// Buffer is a mutable document with one cursor and an optional selection.
// The selection runs from anchor to cursor; without an anchor it is empty.
type Buffer struct {
	lines    []string
	cursor   Position
	anchor   Position
	anchored bool
	wantCol  int
	handle   selection.Handle
	dirty    bool
	revision int
}

// NewBuffer returns a buffer holding text with the cursor at the origin.
// Every buffer gets its own surface handle.
func NewBuffer(text string) *Buffer {
	return &Buffer{
		lines:  strings.Split(text, "\n"),
		handle: selection.NewHandle(),
	}
}

// Handle identifies this buffer instance.
func (b *Buffer) Handle() selection.Handle { return b.handle }

// LineCount returns the number of lines; an empty buffer has one.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the text of line i without its terminator.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Text joins all lines with "\n".
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// Dirty reports whether the buffer changed since the last MarkClean.
func (b *Buffer) Dirty() bool { return b.dirty }

// MarkClean clears the dirty flag, typically after saving.
func (b *Buffer) MarkClean() { b.dirty = false }

// Revision increments on every text mutation.
func (b *Buffer) Revision() int { return b.revision }

// Cursor returns the cursor position.
func (b *Buffer) Cursor() Position { return b.cursor }

// HasSelection reports whether a non-empty selection is active.
func (b *Buffer) HasSelection() bool {
	return b.anchored && b.anchor != b.cursor
}

// Selection returns the ordered selection range. Without a selection both
// ends equal the cursor.
func (b *Buffer) Selection() Range {
	if !b.anchored {
		return Range{From: b.cursor, To: b.cursor}
	}
	return selection.NewRange(b.anchor, b.cursor)
}

// SetSelection selects r, leaving the cursor at r.To.
func (b *Buffer) SetSelection(r Range) {
	r = selection.NewRange(b.clamp(r.From), b.clamp(r.To))
	b.anchor = r.From
	b.cursor = r.To
	b.anchored = true
	b.wantCol = r.To.Column
}

// SelectAll selects the entire document.
func (b *Buffer) SelectAll() {
	last := len(b.lines) - 1
	b.SetSelection(Range{To: Position{Line: last, Column: b.lineLen(last)}})
}

// ClearSelection drops the selection and keeps the cursor where it is.
func (b *Buffer) ClearSelection() {
	b.anchored = false
}

// SetCursor moves the cursor to pos and clears the selection.
func (b *Buffer) SetCursor(pos Position) {
	b.cursor = b.clamp(pos)
	b.wantCol = b.cursor.Column
	b.anchored = false
}

// SelectedText returns the text covered by the selection.
func (b *Buffer) SelectedText() string {
	if !b.HasSelection() {
		return ""
	}
	return b.textIn(b.Selection())
}

// ReplaceSelection replaces the selected text with s, or inserts s at the
// cursor when nothing is selected. The cursor ends after the inserted text.
func (b *Buffer) ReplaceSelection(s string) {
	r := b.Selection()
	b.deleteRange(r)
	b.cursor = b.insertAt(r.From, s)
	b.wantCol = b.cursor.Column
	b.anchored = false
	b.dirty = true
	b.revision++
}

// InsertText types s at the cursor, replacing any selection.
func (b *Buffer) InsertText(s string) {
	b.ReplaceSelection(s)
}

// Backspace deletes the selection or the rune before the cursor.
func (b *Buffer) Backspace() {
	if b.HasSelection() {
		b.ReplaceSelection("")
		return
	}
	b.anchored = false
	if b.cursor == (Position{}) {
		return
	}
	from := b.stepLeft(b.cursor)
	b.anchor = from
	b.anchored = true
	b.ReplaceSelection("")
}

// Delete removes the selection or the rune under the cursor.
func (b *Buffer) Delete() {
	if b.HasSelection() {
		b.ReplaceSelection("")
		return
	}
	b.anchored = false
	to := b.stepRight(b.cursor)
	if to == b.cursor {
		return
	}
	b.anchor = to
	b.anchored = true
	b.ReplaceSelection("")
}

// Motion is a cursor movement.
type Motion int

const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MoveTop
	MoveBottom
	MovePageUp
	MovePageDown
)

// PageSize is the number of lines MovePageUp and MovePageDown travel.
const PageSize = 20

// Move applies m. When extend is true the selection grows from the current
// anchor (or the old cursor); otherwise the selection is cleared.
func (b *Buffer) Move(m Motion, extend bool) {
	if extend && !b.anchored {
		b.anchor = b.cursor
		b.anchored = true
	}
	if !extend {
		b.anchored = false
	}
	vertical := false
	switch m {
	case MoveLeft:
		b.cursor = b.stepLeft(b.cursor)
	case MoveRight:
		b.cursor = b.stepRight(b.cursor)
	case MoveUp:
		b.cursor = b.verticalMove(-1)
		vertical = true
	case MoveDown:
		b.cursor = b.verticalMove(1)
		vertical = true
	case MovePageUp:
		b.cursor = b.verticalMove(-PageSize)
		vertical = true
	case MovePageDown:
		b.cursor = b.verticalMove(PageSize)
		vertical = true
	case MoveLineStart:
		b.cursor.Column = 0
	case MoveLineEnd:
		b.cursor.Column = b.lineLen(b.cursor.Line)
	case MoveTop:
		b.cursor = Position{}
	case MoveBottom:
		last := len(b.lines) - 1
		b.cursor = Position{Line: last, Column: b.lineLen(last)}
	}
	if !vertical {
		b.wantCol = b.cursor.Column
	}
}

func (b *Buffer) verticalMove(delta int) Position {
	line := b.cursor.Line + delta
	if line < 0 {
		line = 0
	}
	if line >= len(b.lines) {
		line = len(b.lines) - 1
	}
	col := b.wantCol
	if n := b.lineLen(line); col > n {
		col = n
	}
	return Position{Line: line, Column: col}
}

func (b *Buffer) stepLeft(p Position) Position {
	if p.Column > 0 {
		return Position{Line: p.Line, Column: p.Column - 1}
	}
	if p.Line > 0 {
		return Position{Line: p.Line - 1, Column: b.lineLen(p.Line - 1)}
	}
	return p
}

func (b *Buffer) stepRight(p Position) Position {
	if p.Column < b.lineLen(p.Line) {
		return Position{Line: p.Line, Column: p.Column + 1}
	}
	if p.Line < len(b.lines)-1 {
		return Position{Line: p.Line + 1}
	}
	return p
}

func (b *Buffer) lineLen(i int) int {
	return utf8.RuneCountInString(b.Line(i))
}

func (b *Buffer) clamp(p Position) Position {
	if p.Line < 0 {
		return Position{}
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return Position{Line: last, Column: b.lineLen(last)}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := b.lineLen(p.Line); p.Column > n {
		p.Column = n
	}
	return p
}

func (b *Buffer) textIn(r Range) string {
	if r.From.Line == r.To.Line {
		runes := []rune(b.lines[r.From.Line])
		return string(runes[r.From.Column:r.To.Column])
	}
	var sb strings.Builder
	sb.WriteString(string([]rune(b.lines[r.From.Line])[r.From.Column:]))
	for i := r.From.Line + 1; i < r.To.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(string([]rune(b.lines[r.To.Line])[:r.To.Column]))
	return sb.String()
}

func (b *Buffer) deleteRange(r Range) {
	if r.Empty() {
		return
	}
	head := []rune(b.lines[r.From.Line])[:r.From.Column]
	tail := []rune(b.lines[r.To.Line])[r.To.Column:]
	joined := string(head) + string(tail)
	b.lines = append(b.lines[:r.From.Line+1], b.lines[r.To.Line+1:]...)
	b.lines[r.From.Line] = joined
}

func (b *Buffer) insertAt(p Position, s string) Position {
	runes := []rune(b.lines[p.Line])
	head := string(runes[:p.Column])
	tail := string(runes[p.Column:])
	parts := strings.Split(s, "\n")
	if len(parts) == 1 {
		b.lines[p.Line] = head + s + tail
		return Position{Line: p.Line, Column: p.Column + utf8.RuneCountInString(s)}
	}
	last := len(parts) - 1
	inserted := make([]string, 0, len(parts))
	inserted = append(inserted, head+parts[0])
	inserted = append(inserted, parts[1:last]...)
	inserted = append(inserted, parts[last]+tail)

	lines := make([]string, 0, len(b.lines)+last)
	lines = append(lines, b.lines[:p.Line]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[p.Line+1:]...)
	b.lines = lines
	return Position{Line: p.Line + last, Column: utf8.RuneCountInString(parts[last])}
}
