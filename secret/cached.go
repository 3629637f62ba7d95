package secret

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedProvider wraps a Provider with a TTL cache. Concurrent lookups of
// the same reference share one upstream call. Errors are not cached.
type CachedProvider struct {
	inner Provider
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewCachedProvider wraps inner. A non-positive ttl disables caching but
// keeps call deduplication.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string { return c.inner.Name() }

// Resolve returns a cached value or resolves it through the wrapped provider.
func (c *CachedProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if v, ok := c.get(ref); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(ref, func() (any, error) {
		v, err := c.inner.Resolve(ctx, ref)
		if err != nil {
			return "", err
		}
		c.set(ref, v)
		return v, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops every cached value.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Close drops the cache and closes the wrapped provider.
func (c *CachedProvider) Close() error {
	c.Invalidate()
	return c.inner.Close()
}

func (c *CachedProvider) get(ref string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ref]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, ref)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (c *CachedProvider) set(ref, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[ref] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

var _ Provider = (*CachedProvider)(nil)
