package memory

import (
	"context"
	"sync"

	"github.com/aretw0/facet/pkg/domain"
)

// Store implements ports.RecordStore in memory.
// Safe for concurrent use. Values are stored as-is, without serialization.
type Store struct {
	data map[string]*domain.Record
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Record),
	}
}

// Save persists the record in memory.
func (s *Store) Save(ctx context.Context, sessionID string, record *domain.Record) error {
	// Copy the top-level map so later writes by the caller don't leak into the store.
	copied := record.Snapshot()
	copied.ID = sessionID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the record from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so the caller can't mutate store state directly by pointer.
	return record.Snapshot(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
