package store

import (
	"context"
	"sync"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// MemoryStore keeps records in a map. It backs tests and the local server
// when no durable backend is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]contact.Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]contact.Record)}
}

// Put stores rec under its id, replacing any earlier record.
func (s *MemoryStore) Put(ctx context.Context, rec contact.Record) error {
	if err := ctx.Err(); err != nil {
		return Classify(TypeMemory, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

// Get returns the record stored under id.
func (s *MemoryStore) Get(id string) (contact.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
