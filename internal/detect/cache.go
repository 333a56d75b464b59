package detect

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
)

// detectionsEntry is one location's outcome for one genus: the full map of
// detections every processor returned, whether the location ultimately
// qualified (confidence >= threshold, possibly after pattern extension),
// and — for a terminally-unqualified entry — every pattern suffix that was
// tried, so a repeat query within ttl can re-raise ProcessorInavailability
// without re-running any network detection.
type detectionsEntry struct {
	detections        map[string]docmodel.Detection
	qualified         bool
	urlPatternsTried   []string
	insertedAt        time.Time
	ttl               time.Duration
}

func (e detectionsEntry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// detectionsCache is a count-capped LRU keyed by "genus:canonicalLocation".
type detectionsCache struct {
	mu    sync.Mutex
	inner *lru.Cache[string, detectionsEntry]
	ttl   time.Duration
	sink  telemetry.Sink
}

func newDetectionsCache(capacity int, ttl time.Duration, sink telemetry.Sink) *detectionsCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = defaultCacheTTLSeconds * time.Second
	}
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	inner, _ := lru.NewWithEvict[string, detectionsEntry](capacity, func(key string, _ detectionsEntry) {
		sink.RecordEviction(telemetry.NewEvictionEvent("detections", key, "count_cap_exceeded"))
	})
	return &detectionsCache{inner: inner, ttl: ttl, sink: sink}
}

func (c *detectionsCache) getFresh(key string) (detectionsEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.inner.Get(key)
	if !ok {
		return detectionsEntry{}, false
	}
	if entry.expired(time.Now()) {
		c.inner.Remove(key)
		return detectionsEntry{}, false
	}
	return entry, true
}

func (c *detectionsCache) put(key string, detections map[string]docmodel.Detection, qualified bool, patternsTried []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(key, detectionsEntry{
		detections:       detections,
		qualified:        qualified,
		urlPatternsTried: patternsTried,
		insertedAt:       time.Now(),
		ttl:              c.ttl,
	})
}

// redirectsCache maps an input location (post-canonicalization) to the
// working URL a pattern-extension fallback (or, in a future extension, an
// HTTP redirect) discovered for it. Shared across both genera: a URL
// correction found while detecting inventory also benefits a subsequent
// structure detection against the same original location.
type redirectsCache struct {
	mu    sync.Mutex
	inner *lru.Cache[string, string]
	sink  telemetry.Sink
}

func newRedirectsCache(capacity int, sink telemetry.Sink) *redirectsCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	inner, _ := lru.NewWithEvict[string, string](capacity, func(key string, _ string) {
		sink.RecordEviction(telemetry.NewEvictionEvent("redirects", key, "count_cap_exceeded"))
	})
	return &redirectsCache{inner: inner, sink: sink}
}

func (c *redirectsCache) get(location string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Get(location)
}

func (c *redirectsCache) put(original, working string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(original, working)
}
