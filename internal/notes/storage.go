package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	partialPattern = ".*.part"
	defaultMode    = os.FileMode(0o644)
)

// Store is the persistent document store the target document lives in.
type Store interface {
	Exists(path string) (bool, error)
	Read(path string) (string, error)
	Write(path, text string) error
}

// FileStore keeps documents on the local filesystem.
type FileStore struct{}

// Exists reports whether path names an existing file.
func (FileStore) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}

// Read returns the full contents of path.
func (FileStore) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the contents of path, creating parent directories. The data
// lands in a uniquely named sibling .part file first and is renamed into
// place. An existing file keeps its permission bits.
func (FileStore) Write(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	mode := defaultMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	partial, err := os.CreateTemp(dir, filepath.Base(path)+partialPattern)
	if err != nil {
		return err
	}
	partialPath := partial.Name()
	fail := func(err error) error {
		_ = partial.Close()
		_ = os.Remove(partialPath)
		return err
	}
	if _, err := partial.WriteString(text); err != nil {
		return fail(err)
	}
	if err := partial.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := partial.Close(); err != nil {
		_ = os.Remove(partialPath)
		return err
	}
	if err := os.Rename(partialPath, path); err != nil {
		_ = os.Remove(partialPath)
		return err
	}
	return nil
}

// ReadOrEmpty returns "" for documents that do not exist yet.
func ReadOrEmpty(store Store, path string) (string, error) {
	ok, err := store.Exists(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return store.Read(path)
}

// MemoryStore is an in-process Store, mostly useful in tests.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]string

	// ReadErr and WriteErr, when set, are returned by Read and Write.
	ReadErr  error
	WriteErr error
}

// NewMemoryStore returns a store seeded with docs.
func NewMemoryStore(docs map[string]string) *MemoryStore {
	copied := make(map[string]string, len(docs))
	for path, text := range docs {
		copied[path] = text
	}
	return &MemoryStore{docs: copied}
}

func (s *MemoryStore) Exists(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[path]
	return ok, nil
}

func (s *MemoryStore) Read(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", s.ReadErr
	}
	text, ok := s.docs[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, os.ErrNotExist)
	}
	return text, nil
}

func (s *MemoryStore) Write(path, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if s.docs == nil {
		s.docs = map[string]string{}
	}
	s.docs[path] = text
	return nil
}

// Document returns the stored text for path.
func (s *MemoryStore) Document(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[path]
	return text, ok
}

// PathLocks serializes read-modify-write cycles per document path.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock blocks until path is free and returns the matching unlock function.
// Relative and absolute spellings of one file share a lock.
func (p *PathLocks) Lock(path string) func() {
	key := lockKey(path)
	p.mu.Lock()
	if p.locks == nil {
		p.locks = map[string]*sync.Mutex{}
	}
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func lockKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
