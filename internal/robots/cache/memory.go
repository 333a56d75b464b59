package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is an in-memory, count-capped implementation of Cache backed by
// hashicorp/golang-lru. The cache lives only for the duration of the
// process (no persistence).
type LRUCache struct {
	inner *lru.Cache[string, Policy]
}

const defaultCapacity = 500

// NewLRUCache creates an empty cache holding at most capacity policies,
// evicting least-recently-used hosts beyond that. capacity <= 0 falls
// back to the 500-host default.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	inner, err := lru.New[string, Policy](capacity)
	if err != nil {
		// capacity is always > 0 at this point; lru.New only errors on a
		// non-positive size.
		inner, _ = lru.New[string, Policy](defaultCapacity)
	}
	return &LRUCache{inner: inner}
}

func (c *LRUCache) Get(host string) (Policy, bool) {
	return c.inner.Get(host)
}

func (c *LRUCache) Put(host string, policy Policy) {
	c.inner.Add(host, policy)
}

func (c *LRUCache) Len() int {
	return c.inner.Len()
}
