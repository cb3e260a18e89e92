package notes

import (
	"fmt"
	"strings"
	"time"
)

// UntitledSource is used when the extracted text has no source document.
const UntitledSource = "Untitled"

const (
	entryDateLayout = "2006-01-02"
	entryTimeLayout = "15:04"
)

// FormatEntry prefixes text with a reference line naming the source and the
// UTC date and time of capture. The text is embedded verbatim.
func FormatEntry(sourceLabel, text string, now time.Time) string {
	label := strings.TrimSpace(sourceLabel)
	if label == "" {
		label = UntitledSource
	}
	now = now.UTC()
	header := fmt.Sprintf("<sub>[[%s]] | %s | %s:</sub>", label, now.Format(entryDateLayout), now.Format(entryTimeLayout))
	return header + "\n" + text
}
