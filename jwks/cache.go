package jwks

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultTTL is the cache entry lifetime used when none is configured.
const DefaultTTL = 5 * time.Minute

// LoadFunc produces a fresh key set. Client.Fetch satisfies it.
type LoadFunc func(ctx context.Context) (jwk.Set, error)

// Cache holds the most recently loaded key set together with its load time,
// and serves it until the entry outlives the TTL. There is exactly one entry
// slot, guarded by a single RWMutex; key sets are never mutated in place,
// only replaced, so a set handed out stays valid for its readers after a
// replacement lands.
//
// A cache may additionally run a background refresh goroutine that reloads
// the entry on a fixed interval independently of demand. Owners must call
// Close on every teardown path to stop it.
type Cache struct {
	ttl    time.Duration
	logger Logger

	mu    sync.RWMutex
	entry *cacheEntry

	refreshInterval time.Duration
	refreshLoad     LoadFunc
	cancelRefresh   context.CancelFunc
	closeOnce       sync.Once
}

type cacheEntry struct {
	set       jwk.Set
	createdAt time.Time
}

func (e *cacheEntry) fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.createdAt) < ttl
}

// NewCache sets up a Cache whose entries expire ttl after being loaded.
// A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration, opts ...CacheOption) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cache := &Cache{
		ttl:    ttl,
		logger: noopLogger{},
	}

	for _, opt := range opts {
		if err := opt(cache); err != nil {
			return nil, err
		}
	}

	if cache.refreshLoad != nil {
		ctx, cancel := context.WithCancel(context.Background())
		cache.cancelRefresh = cancel
		go cache.refreshLoop(ctx)
	}

	return cache, nil
}

// GetOrLoad returns the cached key set while the entry is younger than the
// TTL. Otherwise it takes the write lock and invokes load unconditionally:
// callers that raced on the same expired entry each load in turn, and the
// last write wins. A failed load leaves the previous entry in place and
// returns the loader's error.
func (c *Cache) GetOrLoad(ctx context.Context, load LoadFunc) (jwk.Set, error) {
	now := time.Now()

	c.mu.RLock()
	if c.entry != nil && c.entry.fresh(c.ttl, now) {
		set := c.entry.set
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	c.logger.Debugf("jwks cache entry expired or missing, reloading")

	c.mu.Lock()
	defer c.mu.Unlock()

	set, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.entry = &cacheEntry{set: set, createdAt: time.Now()}
	return set, nil
}

// ReloadWith invokes load regardless of entry freshness and installs the
// result. The load runs outside the lock, so readers are served the old
// entry until the replacement lands.
func (c *Cache) ReloadWith(ctx context.Context, load LoadFunc) (jwk.Set, error) {
	set, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entry = &cacheEntry{set: set, createdAt: time.Now()}
	c.mu.Unlock()

	return set, nil
}

// Close stops the background refresh goroutine, if any, without waiting for
// an in-flight tick to finish. It is safe to call multiple times.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		if c.cancelRefresh != nil {
			c.cancelRefresh()
		}
	})
}

// refreshLoop reloads the entry once immediately and then on every tick
// until the cache is closed.
func (c *Cache) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		c.refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// refresh replaces the entry with a freshly fetched key set. A failed fetch
// keeps the previous entry so verification degrades to possibly-stale keys
// rather than hard failure. A fetch that completes after Close has its
// result discarded.
func (c *Cache) refresh(ctx context.Context) {
	start := time.Now()

	set, err := c.refreshLoad(ctx)
	if err != nil {
		c.logger.Warnf("failed to refresh jwks cache after %s, keeping the previous key set: %v", time.Since(start), err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	c.entry = &cacheEntry{set: set, createdAt: time.Now()}
	c.mu.Unlock()

	c.logger.Debugf("jwks cache refreshed in %s", time.Since(start))
}
