package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
)

// DefaultPoolCacheSize bounds the number of decoded pool accounts kept per process
const DefaultPoolCacheSize = constants.PoolCacheSize

// PoolCache is a bounded in-memory cache that evicts in insertion order.
// Updating a cached key keeps its original position.
type PoolCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    *lru.Cache[K, *slot[V]]

	hits   uint64
	misses uint64
}

// slot lets Put replace a value without touching its recency
type slot[V any] struct {
	value V
}

// Stats reports cache usage
type Stats struct {
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
}

// NewPoolCache creates a cache holding at most capacity entries.
// A non-positive capacity uses DefaultPoolCacheSize.
func NewPoolCache[K comparable, V any](capacity int) *PoolCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultPoolCacheSize
	}
	// lru.New only fails for a non-positive size
	items, err := lru.New[K, *slot[V]](capacity)
	if err != nil {
		panic(err)
	}
	return &PoolCache[K, V]{capacity: capacity, items: items}
}

// Get returns the cached value for key. Reads never refresh position.
func (c *PoolCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.items.Peek(key); ok {
		c.hits++
		return s.value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Put stores value under key, evicting the oldest entry when full
func (c *PoolCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.items.Peek(key); ok {
		s.value = value
		return
	}
	c.items.Add(key, &slot[V]{value: value})
}

// Remove drops key from the cache
func (c *PoolCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Remove(key)
}

// Len returns the number of cached entries
func (c *PoolCache[K, V]) Len() int {
	return c.items.Len()
}

// Stats returns a snapshot of size and hit counters
func (c *PoolCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:     c.items.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
