package template

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a bounded, FIFO-eviction cache of parsed Plans keyed by raw
// template string (spec.md §4.1 Cache contract). Size 0 disables caching:
// every lookup parses fresh. It never holds its lock across a parse or a
// transform invocation.
type Cache struct {
	mu    sync.Mutex
	cap   int
	order []string
	plans map[string]*Plan

	group singleflight.Group
}

// NewCache builds a Cache with the given capacity. Capacity 0 disables
// caching.
func NewCache(capacity int) *Cache {
	return &Cache{
		cap:   capacity,
		plans: make(map[string]*Plan),
	}
}

// Get returns the Plan for raw, parsing and inserting it on a miss.
// Concurrent misses for the same raw string are deduplicated so only one
// parse runs.
func (c *Cache) Get(raw string) *Plan {
	c.mu.Lock()
	if c.cap == 0 {
		c.mu.Unlock()
		return Parse(raw)
	}
	if p, ok := c.plans[raw]; ok {
		c.mu.Unlock()
		return p
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(raw, func() (any, error) {
		c.mu.Lock()
		if p, ok := c.plans[raw]; ok {
			c.mu.Unlock()
			return p, nil
		}
		c.mu.Unlock()

		p := Parse(raw)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cap == 0 {
			return p, nil
		}
		if _, exists := c.plans[raw]; !exists {
			c.plans[raw] = p
			c.order = append(c.order, raw)
			c.evictLocked()
		}
		return p, nil
	})
	return v.(*Plan)
}

// Resize changes the cache's capacity, evicting in insertion order down
// to the new cap. Setting capacity to 0 disables the cache and drops all
// entries.
func (c *Cache) Resize(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cap = capacity
	if capacity == 0 {
		c.plans = make(map[string]*Plan)
		c.order = nil
		return
	}
	c.evictLocked()
}

// Len reports the number of cached plans.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans)
}

func (c *Cache) evictLocked() {
	for len(c.order) > c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.plans, oldest)
	}
}
