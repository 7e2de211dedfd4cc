package cartstore

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Manager hands out one Store per shopper session, loading each cart from
// the mirror on first access. Two concurrent requests for the same session
// must not both read the mirror and race their stores, so loads are
// deduplicated with singleflight.
type Manager struct {
	mirror Mirror

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group
}

func NewManager(mirror Mirror) *Manager {
	return &Manager{
		mirror: mirror,
		stores: make(map[string]*Store),
	}
}

// Get returns the store for the session, loading it on first access.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.RLock()
	store, ok := m.stores[sessionID]
	m.mu.RUnlock()
	if ok {
		return store
	}

	v, _, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.stores[sessionID]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		s := NewStore(sessionID, m.mirror)
		s.Load(ctx)

		m.mu.Lock()
		m.stores[sessionID] = s
		m.mu.Unlock()
		return s, nil
	})
	return v.(*Store)
}

// Close stops every managed store, flushing queued writes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stores {
		s.Close()
	}
}
