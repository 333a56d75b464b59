package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
)

const defaultMaxContentBytes = 256 * 1024 * 1024 // 256 MiB
const defaultSuccessTTL = 3600 * time.Second
const defaultErrorTTL = 60 * time.Second

// contentCache is a byte-capped LRU over response bodies. hashicorp/lru
// only evicts by entry count, so the byte budget is enforced manually:
// every insert that would push total usage over the cap evicts the
// least-recently-used entries (via GetOldest and removeLocked) until it
// fits again.
type contentCache struct {
	mu         sync.Mutex
	inner      *lru.Cache[string, *contentEntry]
	maxBytes   int
	usedBytes  int
	successTTL time.Duration
	errorTTL   time.Duration
	sink       telemetry.Sink
}

func newContentCache(maxBytes int, successTTL, errorTTL time.Duration, sink telemetry.Sink) *contentCache {
	if maxBytes <= 0 {
		maxBytes = defaultMaxContentBytes
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

	// Capacity is nominally unbounded by count; eviction is byte-driven.
	// golang-lru requires a positive size, so pick a large ceiling that
	// byte pressure will trigger long before count pressure ever could.
	inner, _ := lru.New[string, *contentEntry](1 << 20)

	return &contentCache{
		inner:      inner,
		maxBytes:   maxBytes,
		successTTL: successTTL,
		errorTTL:   errorTTL,
		sink:       sink,
	}
}

func (c *contentCache) getFresh(url string) (*contentEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.inner.Get(url)
	if !ok {
		return nil, false
	}
	if entry.expired(time.Now()) {
		c.removeLocked(url, entry, "ttl_expired")
		return nil, false
	}
	entry.lastAccess = time.Now()
	return entry, true
}

func (c *contentCache) putSuccess(url string, body []byte, contentType string) {
	c.put(url, &contentEntry{
		body:        body,
		contentType: contentType,
		contentHash: hashBody(body),
		bytesUsed:   bytesUsedFor(body),
		insertedAt:  time.Now(),
		lastAccess:  time.Now(),
		ttl:         c.successTTL,
	})
}

func (c *contentCache) putError(url, message string) {
	c.put(url, &contentEntry{
		isError:    true,
		errMessage: message,
		bytesUsed:  entryOverheadBytes,
		insertedAt: time.Now(),
		lastAccess: time.Now(),
		ttl:        c.errorTTL,
	})
}

func (c *contentCache) put(url string, entry *contentEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.inner.Get(url); ok {
		c.usedBytes -= old.bytesUsed
		c.inner.Remove(url)
	}

	c.inner.Add(url, entry)
	c.usedBytes += entry.bytesUsed

	for c.usedBytes > c.maxBytes {
		oldestKey, oldestEntry, ok := c.inner.GetOldest()
		if !ok {
			break
		}
		c.removeLocked(oldestKey, oldestEntry, "byte_cap_exceeded")
	}
}

// removeLocked must be called while c.mu is held.
func (c *contentCache) removeLocked(key string, entry *contentEntry, reason string) {
	c.inner.Remove(key)
	c.usedBytes -= entry.bytesUsed
	c.sink.RecordEviction(telemetry.NewEvictionEvent("content", key, reason))
}

func (c *contentCache) usedByteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}

func (c *contentCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}
