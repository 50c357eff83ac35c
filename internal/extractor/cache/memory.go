package cache

import (
	"context"
	"sync"
	"time"

	"jobtrail-utils/pkg/models"
)

type entry struct {
	job       *models.Job
	createdAt time.Time
}

// MemoryStore is the default process-local result cache. Entries have
// no TTL and are removed only by explicit Delete/Clear.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
	}
}

// Get returns the cached job for key, if any
func (s *MemoryStore) Get(_ context.Context, key string) (*models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.job, true
}

// Put upserts the job for key; last write wins
func (s *MemoryStore) Put(_ context.Context, key string, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{job: job, createdAt: time.Now()}
	return nil
}

// Delete removes the entry for key if present
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear removes every entry
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
	return nil
}

// Len reports the number of cached results
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
