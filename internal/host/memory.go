package host

import (
	"sync"

	"github.com/klauern/boxsync/internal/model"
)

// MemoryStore keeps the host list in memory. It counts saves so callers can
// check that every change was persisted.
type MemoryStore struct {
	mu    sync.Mutex
	hosts []model.Host
	Saves int
	// Err, when set, is returned by Save.
	Err error
}

// NewMemoryStore returns a store seeded with hosts.
func NewMemoryStore(hosts ...model.Host) *MemoryStore {
	return &MemoryStore{hosts: append([]model.Host(nil), hosts...)}
}

// Load returns a copy of the stored hosts.
func (s *MemoryStore) Load() ([]model.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Host(nil), s.hosts...), nil
}

// Save replaces the stored hosts.
func (s *MemoryStore) Save(hosts []model.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.hosts = append([]model.Host(nil), hosts...)
	s.Saves++
	return nil
}
