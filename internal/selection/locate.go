package selection

import "strings"

// Locate returns the paragraph around cursorLine as a full-line range.
//
// A paragraph is a maximal run of contiguous non-blank lines. A blank cursor
// line is its own paragraph and never merges with its neighbours.
func Locate(cursorLine int, doc Document) Range {
	count := doc.LineCount()
	if count == 0 {
		return Range{}
	}
	if cursorLine < 0 {
		cursorLine = 0
	}
	if cursorLine >= count {
		cursorLine = count - 1
	}
	if isBlank(doc.Line(cursorLine)) {
		return FullLineRange(doc, cursorLine, cursorLine)
	}

	start := cursorLine
	for start > 0 && !isBlank(doc.Line(start-1)) {
		start--
	}
	end := cursorLine
	for end < count-1 && !isBlank(doc.Line(end+1)) {
		end++
	}
	return FullLineRange(doc, start, end)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
