package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Minute

// MemoryStore keeps entries in process. Expiry is handled by go-cache; the
// tag index is kept alongside it.
type MemoryStore struct {
	items *gocache.Cache

	mu   sync.Mutex
	tags map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, memoryCleanupInterval),
		tags:  map[string]map[string]struct{}{},
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		m.items.Delete(key)
		return nil, false, nil
	}
	return raw, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, raw []byte, ttl time.Duration, tags ...string) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, append([]byte(nil), raw...), ttl)
	if len(tags) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range tags {
		set, ok := m.tags[tag]
		if !ok {
			set = map[string]struct{}{}
			m.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) InvalidateTag(_ context.Context, tag string) error {
	m.mu.Lock()
	keys := m.tags[tag]
	delete(m.tags, tag)
	m.mu.Unlock()
	for key := range keys {
		m.items.Delete(key)
	}
	return nil
}
