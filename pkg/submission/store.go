package submission

import (
	"context"
	"sync"
)

// Store persists accepted submissions. Implementations live outside this
// module; MemoryStore serves tests and local tooling.
type Store interface {
	Save(ctx context.Context, schemaID string, payload Payload) error
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, schemaID string, payload Payload) error

// Save calls fn.
func (fn StoreFunc) Save(ctx context.Context, schemaID string, payload Payload) error {
	return fn(ctx, schemaID, payload)
}

// MemoryStore keeps submissions in memory, grouped by schema id.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]Payload
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]Payload)}
}

func (s *MemoryStore) Save(ctx context.Context, schemaID string, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[schemaID] = append(s.data[schemaID], payload.Clone())
	return nil
}

// Submissions returns the payloads saved for schemaID in arrival order.
func (s *MemoryStore) Submissions(schemaID string) []Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Payload, 0, len(s.data[schemaID]))
	for _, p := range s.data[schemaID] {
		out = append(out, p.Clone())
	}
	return out
}
