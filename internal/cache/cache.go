/*

This file contains the in-process result cache. Analysis results are cached
per-key with a TTL; tags group keys so that all entries touching one vault can
be invalidated together when fresh indexer data arrives.

*/

package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/lagoon-network/vae/internal/logger"
)

var cacheLogger = logger.GetForComponent("cache")

const (
	defaultNumCounters = 100_000
	defaultMaxCost     = 50_000_000 // ~50MB of cached results
	defaultBufferItems = 64
)

// Cache is a TTL cache over ristretto with tag-based invalidation.
type Cache struct {
	store      *ristretto.Cache
	defaultTTL time.Duration

	mu        sync.Mutex
	tagToKeys map[string]map[string]struct{}
}

// New creates a result cache with the given default TTL.
func New(defaultTTL time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultNumCounters,
		MaxCost:     defaultMaxCost,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	return &Cache{
		store:      store,
		defaultTTL: defaultTTL,
		tagToKeys:  make(map[string]map[string]struct{}),
	}, nil
}

// Get returns the cached value for key, or (nil, false) on a miss.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores value under key with the cache's default TTL. The tags associate
// the key with invalidation groups, typically one tag per vault address.
func (c *Cache) Set(key string, value any, tags ...string) {
	c.SetWithTTL(key, value, c.defaultTTL, tags...)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.store.SetWithTTL(key, value, 1, ttl)

	if len(tags) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		keys, ok := c.tagToKeys[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tagToKeys[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateTag drops every cached entry associated with tag.
func (c *Cache) InvalidateTag(tag string) {
	c.mu.Lock()
	keys := c.tagToKeys[tag]
	delete(c.tagToKeys, tag)
	c.mu.Unlock()

	for key := range keys {
		c.store.Del(key)
	}

	if len(keys) > 0 {
		cacheLogger.Debug().Str("tag", tag).Int("keys", len(keys)).Msg("Cache tag invalidated")
	}
}

// Wait blocks until pending writes have been applied. Ristretto applies sets
// asynchronously; callers that need read-your-write behavior call this first.
func (c *Cache) Wait() {
	c.store.Wait()
}

// Close releases the cache's resources.
func (c *Cache) Close() {
	c.store.Close()
}
