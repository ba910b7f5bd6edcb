// Package querycache is a process-wide keyed cache of query results.
//
// Keys are hierarchical tuples. Invalidating a key drops every cached entry whose key starts
// with it, so the next Fetch for those keys calls through to the store again.
package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is used when a Fetch does not name its own stale time
const DefaultStaleTime = 30 * time.Second

// Key identifies a cached query, e.g. {"post", "p1"}
type Key []string

// String returns the storage form of the key
func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// HasPrefix reports whether k starts with every element of prefix
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	fetchedAt time.Time
	value     any
	key       Key
}

// Cache stores query results in a bounded LRU
type Cache struct {
	entries      *lru.Cache[string, entry]
	inflight     map[string]Key
	now          func() time.Time
	logger       *slog.Logger
	group        singleflight.Group
	defaultStale time.Duration
	epoch        uint64
	mu           sync.Mutex
}

// Option configures a Cache
type Option func(*Cache)

// WithStaleTime sets the default stale time
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.defaultStale = d }
}

// WithClock overrides the clock used for staleness checks
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a cache holding at most size entries
func New(size int, opts ...Option) (*Cache, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	c := &Cache{
		entries:      entries,
		inflight:     make(map[string]Key),
		now:          time.Now,
		logger:       slog.Default(),
		defaultStale: DefaultStaleTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the cached value for key while it is fresh, otherwise calls fn and caches its result.
// Concurrent fetches of the same key share one call to fn. Errors are never cached, and a result
// whose fetch overlapped an Invalidate is returned but not stored.
// A staleTime of zero uses the cache default. A nil cache always calls fn.
func Fetch[T any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	if staleTime <= 0 {
		staleTime = c.defaultStale
	}
	k := key.String()

	if e, ok := c.entries.Get(k); ok && c.now().Sub(e.fetchedAt) < staleTime {
		if v, ok := e.value.(T); ok {
			return v, nil
		}
	}

	c.mu.Lock()
	c.inflight[k] = key
	c.mu.Unlock()

	result, err, _ := c.group.Do(k, func() (any, error) {
		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		v, err := fn(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.inflight, k)
		if err != nil {
			return v, err
		}
		if c.epoch == epoch {
			c.entries.Add(k, entry{key: key, value: v, fetchedAt: c.now()})
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate drops every entry whose key starts with prefix. An empty prefix drops everything.
// Invalidating a key that was never cached is a no-op, as is invalidating a nil cache.
func (c *Cache) Invalidate(prefix Key) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++

	removed := 0
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if ok && e.key.HasPrefix(prefix) {
			c.entries.Remove(k)
			removed++
		}
	}
	for k, key := range c.inflight {
		if key.HasPrefix(prefix) {
			c.group.Forget(k)
			delete(c.inflight, k)
		}
	}

	c.logger.Debug("query cache invalidated", "prefix", []string(prefix), "removed", removed)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Cached reports whether a fresh or stale entry exists for key
func (c *Cache) Cached(key Key) bool {
	return c.entries.Contains(key.String())
}
