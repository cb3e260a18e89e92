package selection

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Position is a line/column point in a document. Both are 0-indexed and the
// column is counted in runes.
type Position struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before reports whether p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// Range is an ordered pair of positions with From <= To.
type Range struct {
	From Position
	To   Position
}

// NewRange orders a and b and returns the range between them.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{From: a, To: b}
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.From == r.To
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.From, r.To)
}

// Document is the read-only line view the locator and tracker work against.
type Document interface {
	LineCount() int
	Line(i int) string
}

// LineLength returns the rune length of line i, or 0 when i is out of range.
func LineLength(doc Document, i int) int {
	if i < 0 || i >= doc.LineCount() {
		return 0
	}
	return utf8.RuneCountInString(doc.Line(i))
}

// FullLineRange spans column 0 of start to the end of line end.
func FullLineRange(doc Document, start, end int) Range {
	return Range{
		From: Position{Line: start},
		To:   Position{Line: end, Column: LineLength(doc, end)},
	}
}

type surfaceToken struct {
	id string
}

// Handle identifies one editing surface instance. Handles compare by
// identity: two surfaces with identical content still have distinct handles.
type Handle struct {
	token *surfaceToken
}

// NewHandle returns a fresh surface handle.
func NewHandle() Handle {
	return Handle{token: &surfaceToken{id: uuid.NewString()}}
}

// Same reports whether h and other were produced by the same NewHandle call.
func (h Handle) Same(other Handle) bool {
	return h.token != nil && h.token == other.token
}

func (h Handle) String() string {
	if h.token == nil {
		return "<none>"
	}
	return h.token.id
}
