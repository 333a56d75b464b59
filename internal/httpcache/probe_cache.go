package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
)

const defaultProbeCacheCapacity = 5000

// probeCache is a count-capped LRU over HEAD-probe outcomes. Unlike the
// content cache, entries are small and uniform, so golang-lru's native
// count eviction applies directly.
type probeCache struct {
	mu         sync.Mutex
	inner      *lru.Cache[string, probeEntry]
	successTTL time.Duration
	errorTTL   time.Duration
	sink       telemetry.Sink
}

func newProbeCache(capacity int, successTTL, errorTTL time.Duration, sink telemetry.Sink) *probeCache {
	if capacity <= 0 {
		capacity = defaultProbeCacheCapacity
	}
	if successTTL <= 0 {
		successTTL = defaultSuccessTTL
	}
	if errorTTL <= 0 {
		errorTTL = defaultErrorTTL
	}
	if sink == nil {
		sink = telemetry.NopSink{}
	}

	inner, _ := lru.NewWithEvict[string, probeEntry](capacity, func(key string, _ probeEntry) {
		sink.RecordEviction(telemetry.NewEvictionEvent("probe", key, "count_cap_exceeded"))
	})

	return &probeCache{inner: inner, successTTL: successTTL, errorTTL: errorTTL, sink: sink}
}

func (c *probeCache) getFresh(url string) (probeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.inner.Get(url)
	if !ok {
		return probeEntry{}, false
	}
	if entry.expired(time.Now()) {
		c.inner.Remove(url)
		return probeEntry{}, false
	}
	return entry, true
}

func (c *probeCache) putSuccess(url string, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(url, probeEntry{exists: exists, insertedAt: time.Now(), ttl: c.successTTL})
}

func (c *probeCache) putError(url, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(url, probeEntry{isError: true, errMessage: message, insertedAt: time.Now(), ttl: c.errorTTL})
}

func (c *probeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}
