package mw

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache keeps responses in process memory.
type MemoryCache struct {
	c          *cache.Cache
	generation atomic.Uint64
}

// NewMemoryCache creates an in-memory cache that evicts expired entries every cleanup interval.
func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(defaultTTL, cleanup)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (CachedResponse, bool) {
	v, found := m.c.Get(key)
	if !found {
		return CachedResponse{}, false
	}
	return v.(CachedResponse), true
}

func (m *MemoryCache) Set(_ context.Context, key string, resp CachedResponse, ttl time.Duration) {
	m.c.Set(key, resp, ttl)
}

func (m *MemoryCache) Generation(context.Context) (uint64, error) {
	return m.generation.Load(), nil
}

func (m *MemoryCache) Flush(context.Context) error {
	m.generation.Add(1)
	m.c.Flush()
	return nil
}
