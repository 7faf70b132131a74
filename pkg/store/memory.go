package store

import (
	"sync"

	"github.com/praetorian-inc/acwasm/pkg/types"
)

type sourceKey struct {
	id   types.ContentID
	path string
}

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu      sync.RWMutex
	sources []types.Source
	seen    map[sourceKey]struct{}
	scanned map[types.ContentID]struct{}
	hits    []*types.Hit
	hitKeys map[hitKey]struct{}
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		seen:    make(map[sourceKey]struct{}),
		scanned: make(map[types.ContentID]struct{}),
		hitKeys: make(map[hitKey]struct{}),
	}
}

// AddSource records scanned content.
func (m *MemoryStore) AddSource(src types.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sourceKey{id: src.ID, path: src.Path}
	if _, exists := m.seen[key]; exists {
		return nil
	}
	m.seen[key] = struct{}{}
	m.scanned[src.ID] = struct{}{}
	m.sources = append(m.sources, src)
	return nil
}

// AddHit records a hit.
func (m *MemoryStore) AddHit(h *types.Hit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := keyOf(h)
	if _, exists := m.hitKeys[key]; exists {
		return nil
	}
	m.hitKeys[key] = struct{}{}
	m.hits = append(m.hits, h)
	return nil
}

// GetHits retrieves the hits for one piece of content.
func (m *MemoryStore) GetHits(id types.ContentID) ([]*types.Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*types.Hit{}
	for _, h := range m.hits {
		if h.Source == id {
			result = append(result, h)
		}
	}
	return result, nil
}

// GetAllHits retrieves every hit in insertion order.
func (m *MemoryStore) GetAllHits() ([]*types.Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Hit, len(m.hits))
	copy(result, m.hits)
	return result, nil
}

// Sources lists every recorded source.
func (m *MemoryStore) Sources() ([]types.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]types.Source, len(m.sources))
	copy(result, m.sources)
	return result, nil
}

// SourceExists reports whether the content has already been scanned.
func (m *MemoryStore) SourceExists(id types.ContentID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.scanned[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
