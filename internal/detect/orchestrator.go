package detect

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
	"github.com/rohmanhakim/docsintel/internal/result"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/urlutil"
)

// Config bundles the orchestrator's tunables. Zero values fall back to the
// spec's documented defaults.
type Config struct {
	Proxy               *httpcache.Proxy
	ConfidenceThreshold float64
	CacheTTL            time.Duration
	CacheCapacity       int
	URLPatterns         []string
	Sink                telemetry.Sink
}

// Orchestrator implements determine_processor_optimal (spec 4.7) for one
// processor genus at a time; an Engine constructs one per genus, handing
// each the registration-ordered Detector list for that genus.
type Orchestrator struct {
	proxy       *httpcache.Proxy
	threshold   float64
	patterns    []string
	detections  *detectionsCache
	redirects   *redirectsCache
	sink        telemetry.Sink
	genus       docmodel.Genus
	detectorsMu sync.RWMutex
	detectors   []Detector
}

// New constructs an Orchestrator for genus, sharing no state with any
// other genus's Orchestrator except (optionally) a telemetry sink.
func New(genus docmodel.Genus, detectors []Detector, cfg Config) *Orchestrator {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if len(cfg.URLPatterns) == 0 {
		cfg.URLPatterns = defaultURLPatterns
	}
	if cfg.Sink == nil {
		cfg.Sink = telemetry.NopSink{}
	}
	return &Orchestrator{
		proxy:      cfg.Proxy,
		threshold:  cfg.ConfidenceThreshold,
		patterns:   cfg.URLPatterns,
		detections: newDetectionsCache(cfg.CacheCapacity, cfg.CacheTTL, cfg.Sink),
		redirects:  newRedirectsCache(cfg.CacheCapacity, cfg.Sink),
		sink:       cfg.Sink,
		genus:      genus,
		detectors:  detectors,
	}
}

// HasFreshCacheEntry reports whether Determine(location) would currently
// be served from the detections cache, without running any processor or
// mutating any cache. Used by the detect() diagnostic query to report
// cache provenance.
func (o *Orchestrator) HasFreshCacheEntry(location string) bool {
	canonical := canonicalizeLocation(location)
	working := canonical
	if redirect, ok := o.redirects.get(canonical); ok {
		working = redirect
	}
	_, ok := o.detections.getFresh(string(o.genus) + ":" + working)
	return ok
}

// SharesRedirectsWith lets two Orchestrators of different genera consult
// (and populate) the same redirects cache, per the spec's "URL corrections
// discovered for one genus benefit all subsequent operations through the
// shared redirects cache."
func (o *Orchestrator) SharesRedirectsWith(other *Orchestrator) {
	o.redirects = other.redirects
}

// Determine runs determine_processor_optimal against location, returning
// the highest-confidence qualifying Detection or a *result.ProcessorInavailability.
func (o *Orchestrator) Determine(ctx context.Context, location string) (docmodel.Detection, error) {
	canonical := canonicalizeLocation(location)

	working := canonical
	if redirect, ok := o.redirects.get(canonical); ok {
		working = redirect
	}

	cacheKey := string(o.genus) + ":" + working
	if entry, ok := o.detections.getFresh(cacheKey); ok {
		if entry.qualified {
			if best, name, ok := o.pickBest(entry.detections); ok {
				o.sink.RecordDetection(telemetry.NewDetectionEvent(string(o.genus), name, location, best.Confidence(), ""))
				return best, nil
			}
		}
		return nil, &result.ProcessorInavailability{Source: location, Genus: string(o.genus), URLPatternsAttempted: entry.urlPatternsTried}
	}

	detections, blocked := o.runAll(ctx, working)
	qualifies := o.qualifies(detections)
	o.detections.put(cacheKey, detections, qualifies, nil)

	if qualifies {
		best, name, _ := o.pickBest(detections)
		o.sink.RecordDetection(telemetry.NewDetectionEvent(string(o.genus), name, location, best.Confidence(), ""))
		return best, nil
	}

	var attempted []string
	for _, suffix := range o.patterns {
		attempted = append(attempted, suffix)
		candidate := extendLocation(canonical, suffix)
		candidateKey := string(o.genus) + ":" + candidate

		var candidateDetections map[string]docmodel.Detection
		if entry, ok := o.detections.getFresh(candidateKey); ok {
			candidateDetections = entry.detections
		} else {
			var candidateBlocked error
			candidateDetections, candidateBlocked = o.runAll(ctx, candidate)
			o.detections.put(candidateKey, candidateDetections, o.qualifies(candidateDetections), nil)
			if blocked == nil {
				blocked = candidateBlocked
			}
		}

		if o.qualifies(candidateDetections) {
			best, name, _ := o.pickBest(candidateDetections)
			o.redirects.put(canonical, candidate)
			o.sink.RecordDetection(telemetry.NewDetectionEvent(string(o.genus), name, location, best.Confidence(), suffix))
			return best, nil
		}
	}

	o.detections.put(cacheKey, detections, false, attempted)

	// A robots.txt denial is a policy decision, not an absent format: report
	// it as such (spec 4.1, 4.9) rather than folding it into the generic
	// "no processor qualified" outcome every other miss produces.
	if blocked != nil {
		return nil, &result.RobotsTxtBlockedUrl{URL: working, UserAgent: o.proxy.UserAgent()}
	}

	return nil, &result.ProcessorInavailability{Source: location, Genus: string(o.genus), URLPatternsAttempted: attempted}
}

// qualifies reports whether any detection in the set meets the confidence
// threshold.
func (o *Orchestrator) qualifies(detections map[string]docmodel.Detection) bool {
	_, _, ok := o.pickBestAtLeast(detections, o.threshold)
	return ok
}

// pickBest selects the max-confidence detection in registration order,
// ties broken by the earlier-registered processor (strict ">" comparison
// means a later entry only replaces the incumbent by beating it outright).
func (o *Orchestrator) pickBest(detections map[string]docmodel.Detection) (docmodel.Detection, string, bool) {
	return o.pickBestAtLeast(detections, 0)
}

func (o *Orchestrator) pickBestAtLeast(detections map[string]docmodel.Detection, minConfidence float64) (docmodel.Detection, string, bool) {
	o.detectorsMu.RLock()
	order := o.detectors
	o.detectorsMu.RUnlock()

	var best docmodel.Detection
	var bestName string
	found := false
	for _, d := range order {
		det, ok := detections[d.Name]
		if !ok || det == nil {
			continue
		}
		if det.Confidence() < minConfidence {
			continue
		}
		if !found || det.Confidence() > best.Confidence() {
			best = det
			bestName = d.Name
			found = true
		}
	}
	return best, bestName, found
}

// runAll runs every registered detector concurrently against location and
// collects the non-nil detections into a name -> Detection map. A
// processor error is recorded and treated as "no detection", never
// aborting its siblings (spec 5: "parallel processor detection") — except
// a robots.txt denial, which every detector probing the same origin would
// hit identically; the first one observed is returned so the caller can
// report it instead of a plain "no processor qualified".
func (o *Orchestrator) runAll(ctx context.Context, location string) (map[string]docmodel.Detection, error) {
	o.detectorsMu.RLock()
	detectors := o.detectors
	o.detectorsMu.RUnlock()

	type outcome struct {
		name string
		det  docmodel.Detection
		err  error
	}

	results := make(chan outcome, len(detectors))
	var wg sync.WaitGroup
	for _, d := range detectors {
		wg.Add(1)
		go func(d Detector) {
			defer wg.Done()
			det, err := d.Detect(ctx, o.proxy, location)
			if err != nil {
				o.sink.RecordError(telemetry.NewErrorRecord("detect", "runAll", telemetry.CauseProcessorUnavailable, err.Error(), time.Now(), telemetry.NewAttr(telemetry.AttrURL, location)))
				results <- outcome{name: d.Name, err: err}
				return
			}
			results <- outcome{name: d.Name, det: det}
		}(d)
	}
	wg.Wait()
	close(results)

	out := make(map[string]docmodel.Detection, len(detectors))
	var blocked error
	for r := range results {
		if r.det != nil {
			out[r.name] = r.det
		}
		if blocked == nil && httpcache.IsRobotsDisallowed(r.err) {
			blocked = r.err
		}
	}
	return out, blocked
}

// canonicalizeLocation builds on urlutil.Canonicalize (lowercase scheme and
// host, default ports and query/fragment stripped) and layers on the two
// things a detection location needs that a generic URL canonicalizer
// doesn't know about: a trailing "index.html" is meaningless to a
// directory-style location, and the trailing slash itself must survive
// canonicalization since every processor builds adjacent paths like
// objects.inv by joining against it.
func canonicalizeLocation(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	hadTrailingSlash := strings.HasSuffix(parsed.Path, "/")

	canonical := urlutil.Canonicalize(*parsed)
	if hadTrailingSlash && !strings.HasSuffix(canonical.Path, "/") {
		canonical.Path += "/"
	}
	if canonical.Scheme != "file" {
		canonical.Path = strings.TrimSuffix(canonical.Path, "index.html")
	}
	return canonical.String()
}

// extendLocation appends a pattern suffix to a canonical location's
// origin + path, per spec 4.7 step 6.
func extendLocation(canonical, suffix string) string {
	parsed, err := url.Parse(canonical)
	if err != nil {
		return strings.TrimSuffix(canonical, "/") + suffix
	}
	base := parsed.Scheme + "://" + parsed.Host + strings.TrimSuffix(parsed.Path, "/")
	return base + suffix
}
