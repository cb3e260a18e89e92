package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one full-screen render with escape sequences removed.
type Frame struct {
	Index int
	Plain string
}

var (
	// Renderers clear the screen (CSI n J) before drawing a fresh frame.
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

// plainText strips escape sequences, carriage returns and shift-in/out
// bytes, and trims trailing blanks from every line.
func plainText(raw []byte) string {
	text := strings.ReplaceAll(string(raw), "\r", "")
	text = oscSequence.ReplaceAllString(text, "")
	text = csiSequence.ReplaceAllString(text, "")
	text = strings.NewReplacer("\x0e", "", "\x0f", "", "\x00", "").Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n ")
}

func parseFrames(raw []byte) []Frame {
	var frames []Frame
	for _, segment := range clearScreen.Split(string(raw), -1) {
		plain := plainText([]byte(segment))
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), Plain: plain})
	}
	return frames
}

// LastFrameContaining returns the most recent frame whose text contains
// substr.
func (r *Recording) LastFrameContaining(substr string) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for i := len(r.Frames) - 1; i >= 0; i-- {
		if strings.Contains(r.Frames[i].Plain, substr) {
			return r.Frames[i], true
		}
	}
	return Frame{}, false
}
