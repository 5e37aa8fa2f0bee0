// Package artifact stores raw uploaded archives next to their analysis so a
// project can be re-analyzed later without re-uploading.
package artifact

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no object exists for the key.
var ErrNotFound = errors.New("artifact: object not found")

// Store persists opaque blobs keyed by analysis id and object name.
type Store interface {
	Put(ctx context.Context, analysisID, name string, content []byte) error
	Get(ctx context.Context, analysisID, name string) ([]byte, error)
}

// MemoryStore keeps objects in memory. Used when no object storage is
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, analysisID, name string, content []byte) error {
	key, err := objectKey(analysisID, name)
	if err != nil {
		return err
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, analysisID, name string) ([]byte, error) {
	key, err := objectKey(analysisID, name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	content, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return content, nil
}
