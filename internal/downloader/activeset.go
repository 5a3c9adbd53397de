package downloader

import "sync"

// ActiveSet tracks the content keys of downloads currently in flight so that
// duplicate submissions are rejected atomically.
type ActiveSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewActiveSet creates an empty active set
func NewActiveSet() *ActiveSet {
	return &ActiveSet{keys: make(map[string]struct{})}
}

// TryAcquire claims the key, returning false when it is already held
func (s *ActiveSet) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.keys[key]; held {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Release frees the key. Releasing an unheld key is a no-op.
func (s *ActiveSet) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Len reports how many keys are currently held
func (s *ActiveSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
