// Package cache provides a small LRU used to memoize point-query results.
//
// Cubes are immutable after build, so a cached aggregate never goes
// stale; capacity is the only eviction pressure.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a fixed-capacity least-recently-used cache keyed by string.
// It is safe for concurrent use.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[V any] struct {
	key   string
	value V
}

// NewLRU creates an LRU holding at most capacity entries. A capacity
// below one caches nothing.
func NewLRU[V any](capacity int) *LRU[V] {
	return &LRU[V]{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value for key, marking it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores a value, evicting the least recently used entry when over
// capacity.
func (c *LRU[V]) Set(key string, value V) {
	if c.capacity < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry[V]).value = value
		return
	}

	element := c.evictList.PushFront(&entry[V]{key: key, value: value})
	c.items[key] = element

	for c.evictList.Len() > c.capacity {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[V]).key)
	}
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Purge removes all entries. Hit and miss counters are kept.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Stats returns the cumulative hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
