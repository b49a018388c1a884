package credentials

import "sync"

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the credential slots in process memory. Used by tests
// and ephemeral runs where nothing should outlive the process.
type InMemoryStore struct {
	lock  sync.RWMutex
	slots map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		slots: make(map[string]string),
	}
}

func (s *InMemoryStore) Write(slot, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.slots[slot] = value
	return nil
}

func (s *InMemoryStore) Read(slot string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	value, ok := s.slots[slot]
	return value, ok
}

func (s *InMemoryStore) Clear(slot string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.slots, slot)
	return nil
}

func (s *InMemoryStore) ClearAll() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.slots = make(map[string]string)
	return nil
}
