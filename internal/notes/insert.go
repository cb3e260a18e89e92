package notes

import (
	"fmt"
	"strings"
)

// Mode selects where new entries land in the target document.
type Mode string

const (
	ModeAppend  Mode = "append"
	ModePrepend Mode = "prepend"
)

// ParseMode validates a configured mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeAppend:
		return ModeAppend, nil
	case ModePrepend:
		return ModePrepend, nil
	default:
		return "", fmt.Errorf("unknown insert mode %q (want append or prepend)", value)
	}
}

// Policy governs where Insert places an entry. Marker is only consulted in
// prepend mode.
type Policy struct {
	Mode   Mode
	Marker string
}

const entrySeparator = "\n\n"

// Insert returns the target document text after adding entry according to
// policy. It never fails: every input combination has a defined result.
//
// Append mode joins with exactly one blank line. Prepend mode puts the entry
// at the top, or directly below the first line whose trimmed text equals the
// trimmed marker, followed by one blank line. Prepended results are trimmed
// of surrounding whitespace.
func Insert(existing, entry string, policy Policy) string {
	if existing == "" {
		return entry
	}
	if policy.Mode != ModePrepend {
		return existing + entrySeparator + entry
	}

	lines := strings.Split(existing, "\n")
	markerLine := findMarker(lines, policy.Marker)
	if markerLine < 0 {
		return strings.TrimSpace(entry + entrySeparator + existing)
	}

	entryLines := strings.Split(entry, "\n")
	spliced := make([]string, 0, len(lines)+len(entryLines)+1)
	spliced = append(spliced, lines[:markerLine+1]...)
	spliced = append(spliced, entryLines...)
	spliced = append(spliced, "")
	spliced = append(spliced, lines[markerLine+1:]...)
	return strings.TrimSpace(strings.Join(spliced, "\n"))
}

// findMarker returns the index of the first line equal to marker after
// trimming both, or -1. A blank marker never matches.
func findMarker(lines []string, marker string) int {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return -1
	}
	for idx, line := range lines {
		if strings.TrimSpace(line) == marker {
			return idx
		}
	}
	return -1
}
