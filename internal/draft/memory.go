package draft

import (
	"context"
	"sync"

	"coachdesk/training-app/internal/domain"
)

// memoryStore is an in-process Store used in tests and as a fallback when no
// Redis address is configured. Documents go through the same encode/decode
// path as the Redis store, so loads always return an independent copy.
type memoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty in-memory draft store.
func NewMemoryStore() Store {
	return &memoryStore{docs: map[string][]byte{}}
}

func (s *memoryStore) Save(_ context.Context, key string, d *domain.RoutineDraft) error {
	raw, err := encodeDraft(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = raw
	return nil
}

func (s *memoryStore) Load(_ context.Context, key string) (*domain.RoutineDraft, error) {
	s.mu.RLock()
	raw, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeDraft(raw)
}

func (s *memoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}
