// Package cache provides a thread-safe LRU cache for compiled rules.
//
// Rule text is the key. Concurrent lookups of the same missing key share a
// single compilation, and failed compilations are never cached.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.GetOrCompile("age >= 18", func() (*types.Expression, error) {
//	    return parser.Parse("age >= 18")
//	})
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/sandrolain/gorule/pkg/types"
)

// DefaultCapacity is used when New is given a capacity <= 0.
const DefaultCapacity = 256

type entry struct {
	key  string
	expr *types.Expression
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// Cache is an LRU cache of compiled rules. Once the capacity is reached,
// the least recently used entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	group    singleflight.Group

	hits, misses, evictions atomic.Uint64
}

// New creates a cache holding up to capacity rules.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the rule cached under key and marks it most recently used.
func (c *Cache) Get(key string) (*types.Expression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).expr, true
}

// Set inserts or replaces the rule under key.
func (c *Cache) Set(key string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, expr: expr})
}

// GetOrCompile returns the rule cached under key, or calls compile, caches
// its result and returns it.
func (c *Cache) GetOrCompile(key string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	expr, _, err := c.Lookup(key, compile)
	return expr, err
}

// Lookup is GetOrCompile that also reports whether the rule was already
// cached. Callers racing on the same missing key wait for one compile.
func (c *Cache) Lookup(key string, compile func() (*types.Expression, error)) (*types.Expression, bool, error) {
	if expr, ok := c.Get(key); ok {
		c.hits.Add(1)
		return expr, true, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		if expr, ok := c.Get(key); ok {
			return expr, nil
		}
		expr, err := compile()
		if err != nil {
			return nil, err
		}
		c.Set(key, expr)
		return expr, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*types.Expression), false, nil
}

// Len returns the number of cached rules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of cached rules.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
		Capacity:  c.capacity,
	}
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.evictions.Add(1)
}
