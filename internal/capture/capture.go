// Package capture moves extracted text into the target notes document.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/csheth/clipnote/internal/notes"
)

var (
	ErrEmptySelection = errors.New("no text selected")
	ErrInvalidPattern = errors.New("invalid filter pattern")
	ErrFilterRejected = errors.New("text rejected by filter")
	ErrStoreRead      = errors.New("read target document")
	ErrStoreWrite     = errors.New("write target document")
)

// Settings is the per-call configuration of an extract.
type Settings struct {
	TargetPath string
	Pattern    string
	Policy     notes.Policy
}

// Request describes the text being extracted.
type Request struct {
	SourceLabel string
	Text        string
}

// Result reports a successful extract.
type Result struct {
	TargetPath string
	Entry      string
	Document   string
}

// Service runs extracts against a Store. At most one extract per target path
// is in flight at a time; concurrent calls for the same path queue.
type Service struct {
	store  notes.Store
	locks  notes.PathLocks
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for entry metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger attaches a logger for extract outcomes.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService returns a Service writing through store.
func NewService(store notes.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract filters req.Text, wraps it with metadata and splices it into the
// target document. Precondition failures return before the store is touched.
func (s *Service) Extract(ctx context.Context, settings Settings, req Request) (Result, error) {
	if req.Text == "" {
		return Result{}, ErrEmptySelection
	}
	verdict := notes.Evaluate(settings.Pattern, req.Text)
	switch verdict.Outcome {
	case notes.FilterInvalidPattern:
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidPattern, verdict.Message)
	case notes.FilterReject:
		return Result{}, ErrFilterRejected
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	entry := notes.FormatEntry(req.SourceLabel, req.Text, s.now())

	unlock := s.locks.Lock(settings.TargetPath)
	defer unlock()

	existing, err := notes.ReadOrEmpty(s.store, settings.TargetPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrStoreRead, settings.TargetPath, err)
	}
	document := notes.Insert(existing, entry, settings.Policy)
	if err := s.store.Write(settings.TargetPath, document); err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrStoreWrite, settings.TargetPath, err)
	}

	s.logger.Info().
		Str("target", settings.TargetPath).
		Str("mode", string(settings.Policy.Mode)).
		Int("entryBytes", len(entry)).
		Msg("entry captured")
	return Result{TargetPath: settings.TargetPath, Entry: entry, Document: document}, nil
}

// Describe turns an extract outcome into a one-line notification.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySelection):
		return "Nothing selected. Select text before extracting."
	case errors.Is(err, ErrInvalidPattern):
		return fmt.Sprintf("Filter pattern is invalid: %s", strings.TrimPrefix(err.Error(), ErrInvalidPattern.Error()+": "))
	case errors.Is(err, ErrFilterRejected):
		return "Selection does not match the filter pattern; nothing was moved."
	case errors.Is(err, ErrStoreRead):
		return fmt.Sprintf("Could not read target: %v", err)
	case errors.Is(err, ErrStoreWrite):
		return fmt.Sprintf("Could not write target: %v", err)
	default:
		return fmt.Sprintf("Extract failed: %v", err)
	}
}

// Succeeded formats the notification for a successful extract.
func Succeeded(result Result) string {
	return fmt.Sprintf("Moved selection to %s", result.TargetPath)
}
