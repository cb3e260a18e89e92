package selection

import (
	"strings"
	"testing"
)

type lines []string

func (l lines) LineCount() int     { return len(l) }
func (l lines) Line(i int) string { return l[i] }

func docOf(text string) lines {
	return lines(strings.Split(text, "\n"))
}

func TestLocateParagraphs(t *testing.T) {
	t.Parallel()

	doc := docOf("alpha\nbeta\n\ngamma\n  \ndelta\nepsilon")
	cases := []struct {
		name   string
		cursor int
		want   Range
	}{
		{name: "first paragraph top", cursor: 0, want: Range{To: Position{Line: 1, Column: 4}}},
		{name: "first paragraph bottom", cursor: 1, want: Range{To: Position{Line: 1, Column: 4}}},
		{name: "blank between", cursor: 2, want: Range{From: Position{Line: 2}, To: Position{Line: 2}}},
		{name: "single line paragraph", cursor: 3, want: Range{From: Position{Line: 3}, To: Position{Line: 3, Column: 5}}},
		{name: "whitespace only line", cursor: 4, want: Range{From: Position{Line: 4}, To: Position{Line: 4, Column: 2}}},
		{name: "last paragraph", cursor: 5, want: Range{From: Position{Line: 5}, To: Position{Line: 6, Column: 7}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Locate(tc.cursor, doc)
			if got != tc.want {
				t.Fatalf("Locate(%d) = %v, want %v", tc.cursor, got, tc.want)
			}
		})
	}
}

func TestLocateBlankLineIgnoresNeighbours(t *testing.T) {
	t.Parallel()

	doc := docOf("text above\n\ntext below")
	got := Locate(1, doc)
	want := Range{From: Position{Line: 1}, To: Position{Line: 1}}
	if got != want {
		t.Fatalf("blank line paragraph = %v, want %v", got, want)
	}
}

func TestLocateIsDeterministic(t *testing.T) {
	t.Parallel()

	doc := docOf("one\ntwo\n\nthree")
	first := Locate(1, doc)
	second := Locate(1, doc)
	if first != second {
		t.Fatalf("Locate not stable: %v vs %v", first, second)
	}
}

func TestLocateCountsRunes(t *testing.T) {
	t.Parallel()

	doc := docOf("héllo wörld")
	got := Locate(0, doc)
	if got.To.Column != 11 {
		t.Fatalf("end column = %d, want 11", got.To.Column)
	}
}

func TestLocateClampsCursor(t *testing.T) {
	t.Parallel()

	doc := docOf("a\nb")
	if got := Locate(9, doc); got.To.Line != 1 || got.From.Line != 0 {
		t.Fatalf("clamped Locate = %v", got)
	}
	if got := Locate(0, lines{}); got != (Range{}) {
		t.Fatalf("empty document Locate = %v", got)
	}
}

func TestTrackerEscalatesToSelectAll(t *testing.T) {
	t.Parallel()

	doc := docOf("alpha\nbeta\n\ngamma")
	handle := NewHandle()
	tracker := NewTracker()
	cursor := Position{Line: 1, Column: 2}

	first := tracker.Trigger(handle, doc, cursor, Range{From: cursor, To: cursor})
	if first.Kind != ActionSelectRange {
		t.Fatalf("first trigger = %v, want select-range", first.Kind)
	}
	if tracker.State().Kind != StateParagraphSelected {
		t.Fatalf("state after first trigger = %v", tracker.State().Kind)
	}

	second := tracker.Trigger(handle, doc, first.Range.To, first.Range)
	if second.Kind != ActionSelectAll {
		t.Fatalf("second trigger = %v, want select-all", second.Kind)
	}
	if tracker.State().Kind != StateIdle {
		t.Fatalf("state after select-all = %v, want idle", tracker.State().Kind)
	}

	third := tracker.Trigger(handle, doc, cursor, Range{From: cursor, To: cursor})
	if third.Kind != ActionSelectRange {
		t.Fatalf("third trigger after select-all = %v, want select-range", third.Kind)
	}
}

func TestTrackerStaleSelectionPicksFreshParagraph(t *testing.T) {
	t.Parallel()

	doc := docOf("alpha\nbeta\n\ngamma\ndelta")
	handle := NewHandle()
	tracker := NewTracker()

	first := tracker.Trigger(handle, doc, Position{Line: 0}, Range{})
	edited := first.Range
	edited.To.Column--

	got := tracker.Trigger(handle, doc, Position{Line: 3}, edited)
	if got.Kind != ActionSelectRange {
		t.Fatalf("stale selection escalated to %v", got.Kind)
	}
	want := Range{From: Position{Line: 3}, To: Position{Line: 4, Column: 5}}
	if got.Range != want {
		t.Fatalf("fresh paragraph = %v, want %v", got.Range, want)
	}
}

func TestTrackerStaleWhenLineLengthChanged(t *testing.T) {
	t.Parallel()

	doc := docOf("alpha\nbeta")
	handle := NewHandle()
	tracker := NewTracker()

	first := tracker.Trigger(handle, doc, Position{}, Range{})
	doc[1] = "beta gamma"
	got := tracker.Trigger(handle, doc, Position{}, first.Range)
	if got.Kind != ActionSelectRange {
		t.Fatalf("edited end line should invalidate escalation, got %v", got.Kind)
	}
}

func TestTrackerDifferentSurfaceIsFresh(t *testing.T) {
	t.Parallel()

	doc := docOf("same\ntext")
	tracker := NewTracker()
	first := tracker.Trigger(NewHandle(), doc, Position{}, Range{})

	got := tracker.Trigger(NewHandle(), doc, Position{}, first.Range)
	if got.Kind != ActionSelectRange {
		t.Fatalf("other surface escalated to %v", got.Kind)
	}
}

func TestTrackerResetForcesIdle(t *testing.T) {
	t.Parallel()

	doc := docOf("alpha\nbeta")
	handle := NewHandle()
	tracker := NewTracker()
	first := tracker.Trigger(handle, doc, Position{}, Range{})
	tracker.Reset()
	if tracker.State().Kind != StateIdle {
		t.Fatalf("Reset left state %v", tracker.State().Kind)
	}
	got := tracker.Trigger(handle, doc, Position{}, first.Range)
	if got.Kind != ActionSelectRange {
		t.Fatalf("trigger after reset = %v, want select-range", got.Kind)
	}
}

func TestHandleIdentity(t *testing.T) {
	t.Parallel()

	a := NewHandle()
	b := NewHandle()
	if !a.Same(a) {
		t.Fatal("handle should equal itself")
	}
	if a.Same(b) {
		t.Fatal("distinct handles compared equal")
	}
	if (Handle{}).Same(Handle{}) {
		t.Fatal("zero handles must never match")
	}
}
