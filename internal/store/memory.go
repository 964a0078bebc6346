package store

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// MemoryStore keeps encoded credentials in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Save stores a credential.
func (s *MemoryStore) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	data, err := usergrid.EncodeCredential(cred)
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = data

	return nil
}

// Load returns a copy of the stored credential.
func (s *MemoryStore) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	s.mu.RLock()
	data, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, usergrid.ErrCredentialNotFound
	}

	return usergrid.DecodeCredential(data) //nolint:wrapcheck
}

// Delete removes a credential.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)

	return nil
}

// Len returns the number of stored credentials.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}
