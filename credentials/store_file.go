package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore persists each credential slot as a flat file inside a directory.
// It is the process-scoped analog of a browser tab's sessionStorage: the
// shadow survives a restart of the console and is removed on logout.
type FileStore struct {
	dir  string
	lock sync.RWMutex
}

// NewFileStore creates the backing directory if needed. The directory must
// be private to the operating user since it holds raw tokens.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("[NewFileStore] directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[NewFileStore] os.MkdirAll: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Write(slot, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := os.WriteFile(s.path(slot), []byte(value), 0o600); err != nil {
		return fmt.Errorf("[FileStore.Write] os.WriteFile: %w", err)
	}
	return nil
}

func (s *FileStore) Read(slot string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *FileStore) Clear(slot string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.remove(slot)
}

func (s *FileStore) ClearAll() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, slot := range Slots {
		if err := s.remove(slot); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) remove(slot string) error {
	if err := os.Remove(s.path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileStore.remove] os.Remove: %w", err)
	}
	return nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot)
}
