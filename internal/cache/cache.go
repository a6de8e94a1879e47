// Package cache provides a process-local TTL cache for memoizing remote
// lookups. Expiry is advisory and checked lazily on read; a bounded LRU
// keeps memory from growing without limit. A "negative" entry records that
// a lookup completed and found nothing, which is distinct from a key that
// was never cached.
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultCapacity = 1024
)

type entry[K comparable, V any] struct {
	key      K
	value    V
	negative bool
	storedAt time.Time
}

type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[K]*list.Element
	order    *list.List // front is most recently used
}

func New[K comparable, V any](ttl time.Duration, capacity int) *Cache[K, V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key. negative reports an explicitly
// cached "nothing found" result. ok is false when the key was never cached
// or its entry has expired; expired entries are evicted on the read that
// discovers them.
func (c *Cache[K, V]) Get(key K) (value V, negative bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.entries[key]
	if !exists {
		return value, false, false
	}

	ent := elem.Value.(*entry[K, V])
	if time.Since(ent.storedAt) > c.ttl {
		c.remove(elem)
		return value, false, false
	}

	c.order.MoveToFront(elem)
	return ent.value, ent.negative, true
}

// Set stores value under key, refreshing the entry's age and recency.
func (c *Cache[K, V]) Set(key K, value V) {
	c.set(key, value, false)
}

// SetNegative records that a lookup for key found nothing, so repeated
// misses within the TTL window skip the remote call.
func (c *Cache[K, V]) SetNegative(key K) {
	var zero V
	c.set(key, zero, true)
}

func (c *Cache[K, V]) set(key K, value V, negative bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.entries[key]; exists {
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.negative = negative
		ent.storedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest)
	}

	elem := c.order.PushFront(&entry[K, V]{
		key:      key,
		value:    value,
		negative: negative,
		storedAt: time.Now(),
	})
	c.entries[key] = elem
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element)
	c.order.Init()
}

// remove expects c.mu to be held.
func (c *Cache[K, V]) remove(elem *list.Element) {
	ent := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.entries, ent.key)
}
