package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 10 * time.Second
	pollInterval   = 20 * time.Millisecond
)

// Config describes the program a Session drives.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	// Timeout bounds the whole session, including every WaitFor.
	Timeout time.Duration
}

// Recording is everything the program wrote to the terminal.
type Recording struct {
	Raw    []byte
	Frames []Frame
}

// Session is a program running inside a PTY. Tests press keys and wait for
// text to appear instead of sleeping for fixed intervals.
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	output bytes.Buffer
	// mark is the output offset of the last key press; WaitFor only
	// looks at output written after it.
	mark int

	drained chan struct{}
	exited  chan error
}

// Start launches cfg.Command in a PTY of the configured size.
func Start(ctx context.Context, cfg Config) (*Session, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = withTerm(append(os.Environ(), cfg.Env...))

	size := &pty.Winsize{Rows: uint16(orDefault(cfg.Height, defaultHeight)), Cols: uint16(orDefault(cfg.Width, defaultWidth))}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}

	s := &Session{
		cmd:     cmd,
		ptmx:    ptmx,
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
		exited:  make(chan error, 1),
	}
	go s.drain()
	go func() { s.exited <- cmd.Wait() }()
	return s, nil
}

func (s *Session) drain() {
	defer close(s.drained)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			s.mu.Lock()
			s.output.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Press writes each key to the terminal as a separate input.
func (s *Session) Press(keys ...[]byte) error {
	s.mu.Lock()
	s.mark = s.output.Len()
	s.mu.Unlock()
	for _, key := range keys {
		if _, err := s.ptmx.Write(key); err != nil {
			return fmt.Errorf("tuitest: write input: %w", err)
		}
		// Separate reads keep escape sequences from merging.
		time.Sleep(pollInterval)
	}
	return nil
}

// WaitFor blocks until text shows up in the output written since the last
// Press and returns that output with escape sequences removed.
func (s *Session) WaitFor(text string) (string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		s.mu.Lock()
		screen := plainText(s.output.Bytes()[s.mark:])
		s.mu.Unlock()
		if strings.Contains(screen, text) {
			return screen, nil
		}
		select {
		case <-s.ctx.Done():
			return screen, fmt.Errorf("tuitest: waiting for %q: %w", text, s.ctx.Err())
		case err := <-s.exited:
			s.exited <- err
			return screen, fmt.Errorf("tuitest: program exited while waiting for %q: %v", text, err)
		case <-ticker.C:
		}
	}
}

// Wait blocks until the program exits on its own and returns the recording.
// A non-zero exit is an error.
func (s *Session) Wait() (*Recording, error) {
	defer s.cancel()
	var exitErr error
	select {
	case exitErr = <-s.exited:
	case <-s.ctx.Done():
		exitErr = fmt.Errorf("tuitest: timeout waiting for program exit: %w", s.ctx.Err())
	}
	_ = s.ptmx.Close()
	<-s.drained
	if exitErr != nil {
		return nil, fmt.Errorf("tuitest: program exited with error: %w", exitErr)
	}
	s.mu.Lock()
	raw := append([]byte(nil), s.output.Bytes()...)
	s.mu.Unlock()
	return &Recording{Raw: raw, Frames: parseFrames(raw)}, nil
}

// Close kills the program if it is still running.
func (s *Session) Close() {
	s.cancel()
	_ = s.ptmx.Close()
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func withTerm(env []string) []string {
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Input bytes for the bindings clipnote ships with.
var (
	KeyEnter = []byte{'\r'}
	KeyCtrlA = ctrl('a')
	KeyCtrlK = ctrl('k')
	KeyCtrlS = ctrl('s')
	KeyCtrlX = ctrl('x')
	KeyDown  = []byte("\x1b[B")
)

func ctrl(letter byte) []byte {
	return []byte{letter &^ 0x60}
}
