// Package detect implements the detection orchestrator: the two-stage
// dispatch that, given a location and a processor genus (inventory or
// structure), runs every registered processor of that genus, applies
// confidence-ranked selection, falls back to a fixed list of URL-pattern
// extensions when nothing qualifies, and remembers both the per-location
// detection set and any redirect discovered along the way.
package detect

import (
	"context"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

// DetectFunc adapts one processor's Detect method to a genus-agnostic
// shape the orchestrator can run without knowing whether it is holding an
// inventory.Processor or a structure.Processor. Detect returns (nil, nil)
// when the processor's format/theme is absent, mirroring both concrete
// processor interfaces.
type DetectFunc func(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.Detection, error)

// Detector pairs a processor's name with its genus-agnostic detect
// function. The orchestrator is constructed with detectors already in
// registration order, since that order is the tie-break rule for equal
// confidence (spec 4.7 step 3/5).
type Detector struct {
	Name   string
	Detect DetectFunc
}

// defaultURLPatterns is the fixed, ordered list of path suffixes tried
// against a location's origin+path when no processor qualifies directly.
// The first one whose run yields a qualifying detection wins; order here
// is also the order surfaced in ProcessorInavailability.URLPatternsAttempted.
var defaultURLPatterns = []string{
	"/en/latest/",
	"/latest/",
	"/en/stable/",
	"/stable/",
	"/main/",
	"/master/",
}

const (
	defaultConfidenceThreshold = 0.5
	defaultCacheTTLSeconds     = 300
	defaultCacheCapacity       = 500
)
