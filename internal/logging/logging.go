// Package logging configures the zerolog loggers used by clipnote.
//
// The TUI owns the terminal, so interactive sessions log to a file; the
// headless commands log to stderr through a console writer.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFile returns the log file used when none is configured:
// $XDG_STATE_HOME/clipnote/clipnote.log, falling back to the user cache dir.
func DefaultFile() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		base = dir
	}
	return filepath.Join(base, "clipnote", "clipnote.log")
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to
// info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// NewFile opens path for appending and returns a JSON logger writing to it.
// When the file cannot be opened the logger discards everything. The closer
// must be called on shutdown.
func NewFile(path, level string) (zerolog.Logger, io.Closer) {
	if path == "" {
		path = DefaultFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}
	logger := zerolog.New(file).Level(ParseLevel(level)).With().Timestamp().Logger()
	return logger, file
}

// NewConsole returns a human-readable logger for CLI commands.
func NewConsole(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}
