package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/truncate"

	"github.com/csheth/clipnote/internal/editor"
	"github.com/csheth/clipnote/internal/selection"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
	}
}

// chrome is the number of rows taken by the header, status and footer lines
// plus the blank separators between them.
const chrome = 7

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	contentHeight := height - chrome
	if contentHeight < minViewportHeight {
		contentHeight = minViewportHeight
	}
	l.viewportHeight = contentHeight
}

// gutterWidth is the width of the line-number column including its trailing
// space.
func gutterWidth(lineCount int) int {
	return len(fmt.Sprint(lineCount)) + 1
}

// renderDocument draws every buffer line with a line-number gutter, the
// selection and the cursor. Lines longer than width are clipped.
func renderDocument(buf *editor.Buffer, width int) string {
	sel := buf.Selection()
	hasSelection := buf.HasSelection()
	cursor := buf.Cursor()
	gutter := gutterWidth(buf.LineCount())
	textWidth := width - gutter
	if textWidth < 1 {
		textWidth = 1
	}

	lines := make([]string, buf.LineCount())
	for i := range lines {
		number := fmt.Sprintf("%*d ", gutter-1, i+1)
		if i == cursor.Line {
			number = currentGutterStyle.Render(number)
		} else {
			number = gutterStyle.Render(number)
		}
		from, to := -1, -1
		if hasSelection {
			from, to = lineSpan(sel, i, buf.Line(i))
		}
		cursorCol := -1
		if i == cursor.Line {
			cursorCol = cursor.Column
		}
		lines[i] = number + renderLine(buf.Line(i), from, to, cursorCol, textWidth)
	}
	return strings.Join(lines, "\n")
}

// lineSpan returns the selected rune columns [from, to) of line i, or -1s
// when the line is outside the selection. A fully selected line includes one
// trailing cell so empty selected lines stay visible.
func lineSpan(sel selection.Range, i int, text string) (int, int) {
	if i < sel.From.Line || i > sel.To.Line {
		return -1, -1
	}
	from := 0
	if i == sel.From.Line {
		from = sel.From.Column
	}
	to := utf8.RuneCountInString(text) + 1
	if i == sel.To.Line {
		to = sel.To.Column
	}
	return from, to
}

func renderLine(text string, selFrom, selTo, cursorCol, width int) string {
	runes := []rune(text)
	cells := len(runes)
	if cursorCol >= cells || selTo > cells {
		cells++
	}
	var b strings.Builder
	segmentStart := 0
	segmentKind := -1
	flush := func(end int) {
		if end <= segmentStart {
			return
		}
		chunk := cellText(runes, segmentStart, end)
		switch segmentKind {
		case 1:
			b.WriteString(selectionStyle.Render(chunk))
		case 2:
			b.WriteString(cursorStyle.Render(chunk))
		default:
			b.WriteString(chunk)
		}
	}
	for col := 0; col < cells; col++ {
		kind := 0
		switch {
		case col == cursorCol:
			kind = 2
		case col >= selFrom && col < selTo:
			kind = 1
		}
		if kind != segmentKind {
			flush(col)
			segmentStart = col
			segmentKind = kind
		}
	}
	flush(cells)
	return truncate.String(b.String(), uint(width))
}

func cellText(runes []rune, from, to int) string {
	var b strings.Builder
	for col := from; col < to; col++ {
		if col < len(runes) {
			if runes[col] == '\t' {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(runes[col])
			continue
		}
		b.WriteRune(' ')
	}
	return b.String()
}
