// Package cache holds the robots-policy cache: host -> parsed robots.txt
// policy, evicted by entry count (default 500 hosts per the host cap).
package cache

import (
	"time"

	"github.com/temoto/robotstxt"
)

// Policy is one host's resolved robots.txt state: either a parsed policy,
// or an allow-all marker when the fetch failed or the file was absent/
// unparseable (robots.txt absence means unrestricted access, per the
// standard's default-allow rule).
type Policy struct {
	Data      *robotstxt.RobotsData
	AllowAll  bool
	FetchedAt time.Time
	TTL       time.Duration
}

func (p Policy) Expired(now time.Time) bool {
	return now.Sub(p.FetchedAt) > p.TTL
}

// Cache defines the port interface for robots-policy caching, keyed by
// host. This follows the port-adapter pattern so the checker logic does
// not depend on a specific eviction strategy.
type Cache interface {
	Get(host string) (Policy, bool)
	Put(host string, policy Policy)
	Len() int
}
