package selection

// ActionKind tells the caller what to do with the editing surface.
type ActionKind int

const (
	// ActionSelectRange applies Action.Range as the new selection.
	ActionSelectRange ActionKind = iota
	// ActionSelectAll selects the entire document.
	ActionSelectAll
)

func (k ActionKind) String() string {
	switch k {
	case ActionSelectAll:
		return "select-all"
	default:
		return "select-range"
	}
}

// Action is the outcome of one trigger.
type Action struct {
	Kind  ActionKind
	Range Range
}

// StateKind distinguishes the two tracker states.
type StateKind int

const (
	StateIdle StateKind = iota
	StateParagraphSelected
)

// State is a snapshot of the tracker.
type State struct {
	Kind   StateKind
	Range  Range
	Handle Handle
}

// Tracker escalates repeated select-all triggers from the current paragraph
// to the whole document. The zero value is Idle and ready to use.
//
// A Tracker belongs to one session; it is not safe for concurrent use.
type Tracker struct {
	state State
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Reset forces the tracker back to Idle.
func (t *Tracker) Reset() {
	t.state = State{}
}

// Trigger decides between selecting the cursor's paragraph and selecting the
// whole document.
//
// Escalation only happens when the live selection on the same surface still
// equals the remembered paragraph as a full-line range; anything else picks
// a fresh paragraph around the cursor.
func (t *Tracker) Trigger(handle Handle, doc Document, cursor Position, live Range) Action {
	if t.matchesStored(handle, doc, live) {
		t.state = State{}
		return Action{Kind: ActionSelectAll}
	}
	next := Locate(cursor.Line, doc)
	t.state = State{Kind: StateParagraphSelected, Range: next, Handle: handle}
	return Action{Kind: ActionSelectRange, Range: next}
}

func (t *Tracker) matchesStored(handle Handle, doc Document, live Range) bool {
	if t.state.Kind != StateParagraphSelected {
		return false
	}
	if !t.state.Handle.Same(handle) {
		return false
	}
	stored := t.state.Range
	if stored.To.Line >= doc.LineCount() {
		return false
	}
	expected := FullLineRange(doc, stored.From.Line, stored.To.Line)
	return stored == expected && live == expected
}
