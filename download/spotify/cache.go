package spotify

import (
	"container/list"
	"sync"
	"time"
)

// CacheStats holds cache statistics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
	HitRate   float64
}

type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// TTLCache is a size-bounded LRU cache whose entries also expire after a
// fixed TTL. Expired entries are dropped lazily on access.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// NewTTLCache creates a cache holding at most maxSize entries for ttlSeconds each.
func NewTTLCache[V any](maxSize, ttlSeconds int) *TTLCache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &TTLCache[V]{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		now:     time.Now,
	}
}

// Get returns the cached value and whether it was present and unexpired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	entry := el.Value.(*cacheEntry[V])
	if !c.now().Before(entry.expiresAt) {
		c.lru.Remove(el)
		delete(c.entries, key)
		c.misses++
		return zero, false
	}

	c.lru.MoveToFront(el)
	c.hits++
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.lru.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.maxSize {
		if back := c.lru.Back(); back != nil {
			old := c.lru.Remove(back).(*cacheEntry[V])
			delete(c.entries, old.key)
			c.evictions++
		}
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry[V]{key: key, value: value, expiresAt: expiresAt})
}

// Clear removes all entries from the cache.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Size returns the current number of entries, expired or not.
func (c *TTLCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *TTLCache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		HitRate:   hitRate,
	}
}
