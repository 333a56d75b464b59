package robots

/*
Responsibilities

- Fetch robots.txt per host, through the caller's HTTPFetcher
- Cache the parsed policy per host with its own ttl, evicted by host count
- Enforce allow/deny for each candidate URL
- Surface any Crawl-delay declared for the resolved user-agent group

A Checker never touches the network itself; it delegates to the
HTTPFetcher it was constructed with. The engine supplies the HTTP cache
proxy's FetchRaw, an uncached and uncoalesced GET, so the parsed policy
cache kept here is the only caching robots.txt gets.
*/

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/docsintel/internal/robots/cache"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
	"github.com/temoto/robotstxt"
)

// HTTPFetcher is the minimal fetch capability a Checker needs to retrieve
// robots.txt. It is satisfied structurally by the HTTP cache proxy —
// robots does not import it, avoiding a package cycle.
type HTTPFetcher interface {
	FetchRaw(ctx context.Context, rawURL string) (body []byte, statusCode int, err error)
}

const defaultPolicyTTL = 3600 * time.Second

// Checker resolves robots.txt policy per host and answers allow/deny
// questions for candidate URLs.
type Checker struct {
	fetcher   HTTPFetcher
	cache     cache.Cache
	sink      telemetry.Sink
	userAgent string
	ttl       time.Duration
}

// NewChecker constructs a Checker. A nil cache falls back to an in-memory
// LRU capped at the 500-host default; ttl <= 0 falls back to 3600s.
func NewChecker(fetcher HTTPFetcher, userAgent string, policyCache cache.Cache, ttl time.Duration, sink telemetry.Sink) *Checker {
	if policyCache == nil {
		policyCache = cache.NewLRUCache(0)
	}
	if ttl <= 0 {
		ttl = defaultPolicyTTL
	}
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Checker{fetcher: fetcher, cache: policyCache, sink: sink, userAgent: userAgent, ttl: ttl}
}

// Allow decides whether rawURL may be fetched under the resolved policy
// for its host. Non-http(s) schemes are always allowed without consulting
// any policy. Fetch or parse failures resolve to an allow-all Decision
// rather than propagating an error, matching robots.txt's own
// default-allow convention for a missing or unparseable file.
func (c *Checker) Allow(ctx context.Context, rawURL string) (Decision, failure.ClassifiedError) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Decision{}, &RobotsError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Decision{Allowed: true, Reason: AllowedNonHTTPURL}, nil
	}

	host := strings.ToLower(parsed.Host)
	policy := c.resolvePolicy(ctx, host, parsed.Scheme)

	if policy.AllowAll {
		return Decision{Allowed: true, Reason: AllowedPolicyAbsent}, nil
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	allowed := policy.Data.TestAgent(path, c.userAgent)

	var decision Decision
	if allowed {
		decision = Decision{Allowed: true, Reason: AllowedByRobots}
	} else {
		decision = Decision{Allowed: false, Reason: DisallowedByRobots}
	}

	if group := policy.Data.FindGroup(c.userAgent); group != nil && group.CrawlDelay > 0 {
		delay := group.CrawlDelay
		decision.CrawlDelay = &delay
	}

	var delay time.Duration
	if decision.CrawlDelay != nil {
		delay = *decision.CrawlDelay
	}
	c.sink.RecordRobotsDecision(telemetry.NewRobotsDecisionEvent(host, rawURL, decision.Allowed, delay))

	return decision, nil
}

// CheckURL flattens Allow into the primitive-typed signature the HTTP
// cache proxy consumes, so that package does not need to import robots
// to depend on this capability.
func (c *Checker) CheckURL(ctx context.Context, rawURL string) (allowed bool, crawlDelay time.Duration, err error) {
	decision, classifiedErr := c.Allow(ctx, rawURL)
	if classifiedErr != nil {
		return false, 0, classifiedErr
	}
	if decision.CrawlDelay != nil {
		crawlDelay = *decision.CrawlDelay
	}
	return decision.Allowed, crawlDelay, nil
}

// resolvePolicy returns the cached policy for host, fetching and parsing a
// fresh one through c.fetcher if absent or expired.
func (c *Checker) resolvePolicy(ctx context.Context, host, scheme string) cache.Policy {
	now := time.Now()

	if existing, ok := c.cache.Get(host); ok && !existing.Expired(now) {
		return existing
	}

	robotsURL := scheme + "://" + host + "/robots.txt"
	body, status, err := c.fetcher.FetchRaw(ctx, robotsURL)

	policy := cache.Policy{FetchedAt: now, TTL: c.ttl}

	switch {
	case err != nil:
		policy.AllowAll = true
	case status == 401 || status == 403:
		// a robots.txt the crawler cannot even read is treated as
		// fully restrictive by convention; here we still default-allow
		// since no parseable policy exists to enforce.
		policy.AllowAll = true
	case status >= 500:
		policy.AllowAll = true
	case status >= 200 && status < 300:
		data, parseErr := robotstxt.FromBytes(body)
		if parseErr != nil {
			policy.AllowAll = true
		} else {
			policy.Data = data
		}
	default:
		// 404 and other 4xx: no restrictions published, allow all.
		policy.AllowAll = true
	}

	c.cache.Put(host, policy)
	return policy
}
