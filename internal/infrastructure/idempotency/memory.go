// Package idempotency holds the IdempotencyStore backings that live outside
// the relational database.
package idempotency

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is process-local and does not survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]uuid.UUID)}
}

func (s *MemoryStore) Lookup(_ context.Context, key string) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.keys[key]
	return id, ok, nil
}

// Record keeps the first mapping written for a key.
func (s *MemoryStore) Record(_ context.Context, key string, paymentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; !ok {
		s.keys[key] = paymentID
	}
	return nil
}
