// Package engine wires every lower layer — the HTTP cache proxy, robots
// compliance, rate limiting, the processor registries, and the two
// detection orchestrators — into the five query functions the CLI and the
// RPC server both call against.
package engine

import (
	"context"
	"net/http"

	"github.com/rohmanhakim/docsintel/internal/config"
	"github.com/rohmanhakim/docsintel/internal/detect"
	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
	"github.com/rohmanhakim/docsintel/internal/inventory"
	"github.com/rohmanhakim/docsintel/internal/registry"
	"github.com/rohmanhakim/docsintel/internal/robots"
	"github.com/rohmanhakim/docsintel/internal/robots/cache"
	"github.com/rohmanhakim/docsintel/internal/structure"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/limiter"
)

// Engine is the single entry point the interface layer (CLI, RPC server)
// calls through. It owns every stateful component built at construction
// time; query methods are safe for concurrent use.
type Engine struct {
	proxy              *httpcache.Proxy
	inventoryRegistry  *registry.Registry[inventory.Processor]
	structureRegistry  *registry.Registry[structure.Processor]
	inventoryOrch      *detect.Orchestrator
	structureOrch      *detect.Orchestrator
	cfg                config.Config
	sink               telemetry.Sink
}

// proxyHolder breaks the construction cycle between httpcache.Proxy (which
// needs a RobotsChecker) and robots.Checker (which needs an HTTPFetcher
// satisfied by the very proxy being built): the checker is handed a
// pointer to a holder whose proxy field is back-filled once the proxy
// itself exists.
type proxyHolder struct {
	proxy *httpcache.Proxy
}

func (h *proxyHolder) FetchRaw(ctx context.Context, rawURL string) ([]byte, int, error) {
	return h.proxy.FetchRaw(ctx, rawURL)
}

// New constructs an Engine from cfg, pre-populating both processor
// registries with the built-in Sphinx, MkDocs, and Pydoctor processors for
// their respective genus.
func New(cfg config.Config, sink telemetry.Sink) *Engine {
	if sink == nil {
		sink = telemetry.NopSink{}
	}

	holder := &proxyHolder{}

	robotsChecker := robots.NewChecker(
		holder,
		cfg.UserAgent(),
		cache.NewLRUCache(cfg.RobotsHostCapacity()),
		cfg.RobotsPolicyTTL(),
		sink,
	)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	proxy := httpcache.NewProxy(httpcache.Config{
		UserAgent:        cfg.UserAgent(),
		MaxContentBytes:  cfg.MaxContentBytes(),
		ProbeCapacity:    cfg.ProbeCapacity(),
		SuccessTTL:       cfg.SuccessTTL(),
		ErrorTTL:         cfg.ErrorTTL(),
		ProbeTimeout:     cfg.ProbeTimeout(),
		RetrieveTimeout:  cfg.RetrieveTimeout(),
		Robots:           robotsChecker,
		Limiter:          rateLimiter,
		Sink:             sink,
		HTTPClient:       &http.Client{Timeout: cfg.RetrieveTimeout()},
		RetryBaseDelay:   cfg.BackoffInitialDuration(),
		RetryJitter:      cfg.Jitter(),
		RetryRandomSeed:  cfg.RandomSeed(),
		RetryMultiplier:  cfg.BackoffMultiplier(),
		RetryMaxDuration: cfg.BackoffMaxDuration(),
	})
	holder.proxy = proxy

	inventoryRegistry := registry.New[inventory.Processor]()
	inventoryRegistry.Register("sphinx", inventory.NewSphinxProcessor())
	inventoryRegistry.Register("mkdocs", inventory.NewMkDocsProcessor())
	inventoryRegistry.Register("pydoctor", inventory.NewPydoctorProcessor())

	structureRegistry := registry.New[structure.Processor]()
	structureRegistry.Register("sphinx", structure.NewSphinxProcessor())
	structureRegistry.Register("mkdocs", structure.NewMkDocsProcessor())
	structureRegistry.Register("pydoctor", structure.NewPydoctorProcessor())

	inventoryOrch := detect.New(docmodel.GenusInventory, inventoryDetectors(inventoryRegistry), detect.Config{
		Proxy:               proxy,
		ConfidenceThreshold: cfg.ConfidenceThreshold(),
		CacheTTL:            cfg.DetectionsCacheTTL(),
		CacheCapacity:       cfg.DetectionsCacheCapacity(),
		URLPatterns:         cfg.URLPatterns(),
		Sink:                sink,
	})
	structureOrch := detect.New(docmodel.GenusStructure, structureDetectors(structureRegistry), detect.Config{
		Proxy:               proxy,
		ConfidenceThreshold: cfg.ConfidenceThreshold(),
		CacheTTL:            cfg.DetectionsCacheTTL(),
		CacheCapacity:       cfg.DetectionsCacheCapacity(),
		URLPatterns:         cfg.URLPatterns(),
		Sink:                sink,
	})
	// A pattern-extension fallback discovered for one genus should short
	// circuit the other genus's lookup against the same original location.
	structureOrch.SharesRedirectsWith(inventoryOrch)

	return &Engine{
		proxy:             proxy,
		inventoryRegistry: inventoryRegistry,
		structureRegistry: structureRegistry,
		inventoryOrch:     inventoryOrch,
		structureOrch:     structureOrch,
		cfg:               cfg,
		sink:              sink,
	}
}

func inventoryDetectors(reg *registry.Registry[inventory.Processor]) []detect.Detector {
	var detectors []detect.Detector
	for _, name := range reg.Names() {
		proc, _ := reg.Get(name)
		detectors = append(detectors, detect.Detector{
			Name: name,
			Detect: func(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.Detection, error) {
				return proc.Detect(ctx, proxy, location)
			},
		})
	}
	return detectors
}

func structureDetectors(reg *registry.Registry[structure.Processor]) []detect.Detector {
	var detectors []detect.Detector
	for _, name := range reg.Names() {
		proc, _ := reg.Get(name)
		detectors = append(detectors, detect.Detector{
			Name: name,
			Detect: func(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.Detection, error) {
				return proc.Detect(ctx, proxy, location)
			},
		})
	}
	return detectors
}
