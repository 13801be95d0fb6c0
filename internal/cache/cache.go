// Package cache provides the in-memory caching layer for the Sitewise backend.
// This file implements a bounded LRU cache with per-entry TTL and wildcard
// pattern invalidation.
package cache

import (
	"container/list"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache is a bounded in-memory LRU cache with per-entry TTL support.
// This implementation is thread-safe and suitable for single-instance deployments.
//
// Key Features:
//   - LRU (Least Recently Used) eviction policy
//   - Per-entry TTL, chosen by the caller on every Set
//   - Pattern-based bulk invalidation
//   - Hit rate statistics
//   - Injectable clock for deterministic tests
//
// The cache is a best-effort optimization layer: no operation returns an error,
// a miss is a valid result, and losing the entire contents must never affect
// correctness, only latency.
type Cache[V any] struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	lruList    *list.List
	maxEntries int
	now        func() time.Time

	// Statistics
	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	logger *zap.Logger
}

// entry is a single cached value together with its absolute expiry.
type entry[V any] struct {
	key    string
	value  V
	expiry time.Time
}

// Option configures optional cache behavior.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache holding at most maxEntries entries. When full, the least
// recently used entry is evicted first. A non-positive maxEntries is clamped
// to 1 so the bound holds even for callers that bypass config validation.
func New[V any](maxEntries int, logger *zap.Logger, opts ...Option) *Cache[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxEntries < 1 {
		maxEntries = 1
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[V]{
		items:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		now:        o.now,
		logger:     logger,
	}
}

// Get retrieves a value from the cache. An expired entry is removed and
// reported as a miss. A hit refreshes the entry's recency.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if !c.now().Before(ent.expiry) {
		c.removeElement(elem)
		c.expirations++
		c.misses++
		return zero, false
	}

	// Move to front of LRU list
	c.lruList.MoveToFront(elem)
	c.hits++

	return ent.value, true
}

// Set stores a value with the given TTL, overwriting any existing entry for
// the key. The overwritten entry is re-inserted at the most-recently-used
// position. At capacity, entries are evicted from the LRU end until the new
// entry fits.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}

	// Evict entries if necessary to make room
	for len(c.items) >= c.maxEntries && c.lruList.Len() > 0 {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.removeElement(oldest)
			c.evictions++
		}
	}

	ent := &entry[V]{
		key:    key,
		value:  value,
		expiry: c.now().Add(ttl),
	}
	c.items[key] = c.lruList.PushFront(ent)
}

// Delete removes a single entry and reports whether it existed.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if exists {
		c.removeElement(elem)
	}
	return exists
}

// DeletePattern removes all entries whose key matches the pattern and returns
// the number removed. The glyph '*' matches any run of characters; matching is
// anchored to the full key. A pattern without '*' degrades to literal equality.
// This is an O(n) scan, acceptable because the cache is bounded and in-process.
func (c *Cache[V]) DeletePattern(pattern string) int {
	match := compilePattern(pattern)

	c.mu.Lock()
	defer c.mu.Unlock()

	toDelete := make([]*list.Element, 0)
	for key, elem := range c.items {
		if match(key) {
			toDelete = append(toDelete, elem)
		}
	}

	for _, elem := range toDelete {
		c.removeElement(elem)
	}

	if len(toDelete) > 0 {
		c.logger.Debug("Invalidated cache entries",
			zap.String("pattern", pattern),
			zap.Int("count", len(toDelete)),
		)
	}

	return len(toDelete)
}

// DeleteFunc removes all entries for which pred returns true and returns the
// number removed. It is the value-predicate form of the scan DeletePattern
// performs on keys; tenant-wide identity invalidation is built on it.
func (c *Cache[V]) DeleteFunc(pred func(key string, value V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	toDelete := make([]*list.Element, 0)
	for key, elem := range c.items {
		if pred(key, elem.Value.(*entry[V]).value) {
			toDelete = append(toDelete, elem)
		}
	}

	for _, elem := range toDelete {
		c.removeElement(elem)
	}

	return len(toDelete)
}

// Clear empties the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lruList.Init()
}

// Len returns the current number of entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Cleanup removes all currently-expired entries and returns the count. It
// exists so that unaccessed-but-expired entries do not hold capacity until
// they happen to be read; StartCleanup runs it on a timer.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	toRemove := make([]*list.Element, 0)
	for _, elem := range c.items {
		if !now.Before(elem.Value.(*entry[V]).expiry) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
		c.expirations++
	}

	if len(toRemove) > 0 {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.Int("count", len(toRemove)),
		)
	}

	return len(toRemove)
}

// StartCleanup starts a background goroutine that runs Cleanup on the given
// interval for the lifetime of the process.
func (c *Cache[V]) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			c.Cleanup()
		}
	}()
}

// removeElement removes an entry from the cache (must be called with lock held).
func (c *Cache[V]) removeElement(elem *list.Element) {
	c.lruList.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}

// Stats holds cache statistics.
type Stats struct {
	Entries     int
	MaxEntries  int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	HitRate     float64
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Entries:     len(c.items),
		MaxEntries:  c.maxEntries,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		HitRate:     hitRate,
	}
}

// compilePattern turns a wildcard pattern into a full-string key matcher.
// Patterns that cannot be compiled degrade to literal string comparison
// rather than failing: invalidation is best-effort, never an error source.
func compilePattern(pattern string) func(string) bool {
	if !strings.Contains(pattern, "*") {
		return func(key string) bool { return key == pattern }
	}

	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return func(key string) bool { return key == pattern }
	}
	return re.MatchString
}
