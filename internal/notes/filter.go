package notes

import (
	"regexp"
	"strings"
)

// Outcome is the result class of a filter evaluation.
type Outcome int

const (
	FilterPass Outcome = iota
	FilterReject
	FilterInvalidPattern
)

func (o Outcome) String() string {
	switch o {
	case FilterPass:
		return "pass"
	case FilterReject:
		return "reject"
	case FilterInvalidPattern:
		return "invalid-pattern"
	default:
		return "unknown"
	}
}

// Verdict carries the outcome and, for invalid patterns, the compiler
// message.
type Verdict struct {
	Outcome Outcome
	Message string
}

// Evaluate tests text against pattern. An empty pattern lets everything
// through.
func Evaluate(pattern, text string) Verdict {
	if strings.TrimSpace(pattern) == "" {
		return Verdict{Outcome: FilterPass}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Verdict{Outcome: FilterInvalidPattern, Message: err.Error()}
	}
	if re.MatchString(text) {
		return Verdict{Outcome: FilterPass}
	}
	return Verdict{Outcome: FilterReject}
}
