package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())

	// Act
	c.Set("files:v1:root:all", "payload", time.Minute)
	got, ok := c.Get("files:v1:root:all")

	// Assert
	require.True(t, ok)
	assert.Equal(t, "payload", got)
}

func TestCache_Get_MissingKey(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())

	// Act
	got, ok := c.Get("absent")

	// Assert
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestCache_Get_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	c := New[string](10, zap.NewNop(), WithClock(clock.Now))
	c.Set("key", "value", 30*time.Second)

	// Act
	clock.Advance(31 * time.Second)
	_, ok := c.Get("key")

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Expirations)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCache_Get_ExpiryBoundary(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	c := New[string](10, zap.NewNop(), WithClock(clock.Now))
	c.Set("key", "value", 30*time.Second)

	// Alive strictly before the TTL elapses
	clock.Advance(29 * time.Second)
	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	// Gone at exactly the TTL
	clock.Advance(time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCache_Set_OverwriteRefreshesValueAndTTL(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	c := New[string](10, zap.NewNop(), WithClock(clock.Now))
	c.Set("key", "old", 10*time.Second)

	// Act
	clock.Advance(8 * time.Second)
	c.Set("key", "new", 10*time.Second)
	clock.Advance(8 * time.Second)
	got, ok := c.Get("key")

	// Assert: the second Set restarted the TTL
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_New_NonPositiveCapacityClamped(t *testing.T) {
	// Arrange
	c := New[int](0, zap.NewNop())

	// Act: the second insert must evict the first, never exceed the bound
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	// Assert
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Stats().MaxEntries)

	_, ok := c.Get("a")
	assert.False(t, ok)
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCache_Set_EvictsOldestWithoutReads(t *testing.T) {
	// Arrange
	c := New[int](3, zap.NewNop())

	// Act: fourth insert with no intervening reads
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)

	// Assert: the first-inserted key is gone, the rest remain
	_, ok := c.Get("a")
	assert.False(t, ok)
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should have survived", key)
	}
}

func TestCache_Set_EvictsLeastRecentlyUsed(t *testing.T) {
	// Arrange
	c := New[int](3, zap.NewNop())
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	// Act: touch "a" so "b" becomes the LRU, then overflow
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("d", 4, time.Minute)

	// Assert
	_, ok = c.Get("b")
	assert.False(t, ok, "LRU entry should have been evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should have survived", key)
	}
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_Set_OverwriteAtCapacityDoesNotEvict(t *testing.T) {
	// Arrange
	c := New[int](2, zap.NewNop())
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	// Act: overwriting an existing key needs no extra room
	c.Set("a", 10, time.Minute)

	// Assert
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(0), c.Stats().Evictions)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)
}

func TestCache_Delete(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("key", "value", time.Minute)

	// Act & Assert
	assert.True(t, c.Delete("key"))
	assert.False(t, c.Delete("key"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_DeletePattern_Wildcard(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("files:v1:root:all", "a", time.Minute)
	c.Set("files:v1:f9:all", "b", time.Minute)
	c.Set("files:v2:root:all", "c", time.Minute)
	c.Set("folders:v1:root:all", "d", time.Minute)

	// Act
	removed := c.DeletePattern("files:v1:*")

	// Assert
	assert.Equal(t, 2, removed)
	_, ok := c.Get("files:v2:root:all")
	assert.True(t, ok)
	_, ok = c.Get("folders:v1:root:all")
	assert.True(t, ok)
}

func TestCache_DeletePattern_FullStringAnchored(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("files:v1:root:all", "a", time.Minute)
	c.Set("prefix:files:v1:root:all", "b", time.Minute)

	// Act: the pattern must cover the whole key, not a substring
	removed := c.DeletePattern("files:*")

	// Assert
	assert.Equal(t, 1, removed)
	_, ok := c.Get("prefix:files:v1:root:all")
	assert.True(t, ok)
}

func TestCache_DeletePattern_LiteralWithoutWildcard(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("stats:v1:root:all", "a", time.Minute)
	c.Set("stats:v1:root:allx", "b", time.Minute)

	// Act
	removed := c.DeletePattern("stats:v1:root:all")

	// Assert
	assert.Equal(t, 1, removed)
	_, ok := c.Get("stats:v1:root:allx")
	assert.True(t, ok)
}

func TestCache_DeletePattern_RegexMetacharactersAreLiteral(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("filemeta:v1:f.1:meta", "a", time.Minute)
	c.Set("filemeta:v1:fx1:meta", "b", time.Minute)

	// Act: '.' in the pattern is a literal dot, not "any char"
	removed := c.DeletePattern("filemeta:v1:f.1:*")

	// Assert
	assert.Equal(t, 1, removed)
	_, ok := c.Get("filemeta:v1:fx1:meta")
	assert.True(t, ok)
}

func TestCache_DeletePattern_NoMatches(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("files:v1:root:all", "a", time.Minute)

	// Act & Assert
	assert.Equal(t, 0, c.DeletePattern("folders:*"))
	assert.Equal(t, 1, c.Len())
}

func TestCache_DeleteFunc(t *testing.T) {
	// Arrange
	type row struct{ Tenant string }
	c := New[row](10, zap.NewNop())
	c.Set("u1", row{Tenant: "t1"}, time.Minute)
	c.Set("u2", row{Tenant: "t2"}, time.Minute)
	c.Set("u3", row{Tenant: "t1"}, time.Minute)

	// Act
	removed := c.DeleteFunc(func(_ string, v row) bool { return v.Tenant == "t1" })

	// Assert
	assert.Equal(t, 2, removed)
	_, ok := c.Get("u2")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	// Arrange
	c := New[int](10, zap.NewNop())
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, time.Minute)
	}

	// Act
	c.Clear()

	// Assert
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("key-0")
	assert.False(t, ok)
}

func TestCache_Cleanup_RemovesOnlyExpired(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	c := New[string](10, zap.NewNop(), WithClock(clock.Now))
	c.Set("short", "a", 10*time.Second)
	c.Set("long", "b", 10*time.Minute)

	// Act
	clock.Advance(time.Minute)
	removed := c.Cleanup()

	// Assert
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestCache_Stats_CountersAndHitRate(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())
	c.Set("key", "value", time.Minute)

	// Act: three hits, one miss
	for i := 0; i < 3; i++ {
		_, ok := c.Get("key")
		require.True(t, ok)
	}
	c.Get("absent")

	// Assert
	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 10, stats.MaxEntries)
	assert.InDelta(t, 0.75, stats.HitRate, 0.0001)
}

func TestCache_Stats_EmptyCache(t *testing.T) {
	// Arrange
	c := New[string](10, zap.NewNop())

	// Act
	stats := c.Stats()

	// Assert
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, float64(0), stats.HitRate)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	// Arrange
	c := New[int](100, zap.NewNop())
	var wg sync.WaitGroup

	// Act: hammer the cache from many goroutines
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%20)
				switch i % 4 {
				case 0:
					c.Set(key, i, time.Minute)
				case 1:
					c.Get(key)
				case 2:
					c.Delete(key)
				default:
					c.DeletePattern("key-1*")
				}
			}
		}(g)
	}
	wg.Wait()

	// Assert: no panics, cache still usable
	c.Set("final", 1, time.Minute)
	got, ok := c.Get("final")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}
