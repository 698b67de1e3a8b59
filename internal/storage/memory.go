package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process KV used by tests and local runs. All
// operations including Update hold the store lock, so per-key
// read-modify-write is trivially atomic.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

var _ KV = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.collections[collection][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, key, value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.collections[collection][key]
	var snapshot []byte
	if ok {
		snapshot = make([]byte, len(current))
		copy(snapshot, current)
	}
	next, err := fn(snapshot)
	if err != nil {
		return err
	}
	s.put(collection, key, next)
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	s.mu.RLock()
	items := make(map[string][]byte, len(s.collections[collection]))
	for key, value := range s.collections[collection] {
		out := make([]byte, len(value))
		copy(out, value)
		items[key] = out
	}
	s.mu.RUnlock()

	for key, value := range items {
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) put(collection, key string, value []byte) {
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = make(map[string][]byte)
	}
	out := make([]byte, len(value))
	copy(out, value)
	s.collections[collection][key] = out
}
