package httpcache

/*
Responsibilities

- Serve probe (existence), retrieve_bytes, and retrieve_text operations
  for both http(s):// and file:// locations
- Coalesce concurrent requests for the same URL into a single in-flight
  operation (singleflight), so N callers awaiting the same URL observe
  exactly one network round-trip / file read
- Cache successes and negative results (with a shorter ttl) so repeat
  queries against the same documentation site do not re-fetch
- Consult the robots compliance layer before any http(s) network request,
  and honor the per-host crawl-delay schedule it declares

The proxy never parses content; it only returns bytes, a content type,
and (for text) a decoded string.
*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
	"github.com/rohmanhakim/docsintel/pkg/limiter"
	"github.com/rohmanhakim/docsintel/pkg/retry"
	"github.com/rohmanhakim/docsintel/pkg/timeutil"
)

const (
	defaultProbeTimeout    = 10 * time.Second
	defaultRobotsTimeout   = 5 * time.Second
	defaultRetrieveTimeout = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 200 * time.Millisecond
	defaultRetryJitter     = 100 * time.Millisecond
	defaultRetryMultiplier = 2.0
	defaultRetryMaxDelay   = 5 * time.Second
)

// RobotsChecker is the permission capability the proxy consults before
// any http(s) request. Satisfied structurally by *robots.Checker.
type RobotsChecker interface {
	CheckURL(ctx context.Context, rawURL string) (allowed bool, crawlDelay time.Duration, err error)
}

// Config bundles the tunables used to construct a Proxy. Zero values fall
// back to the documented defaults.
type Config struct {
	UserAgent        string
	MaxContentBytes  int
	ProbeCapacity    int
	SuccessTTL       time.Duration
	ErrorTTL         time.Duration
	ProbeTimeout     time.Duration
	RetrieveTimeout  time.Duration
	Robots           RobotsChecker
	Limiter          limiter.RateLimiter
	Sink             telemetry.Sink
	HTTPClient       *http.Client
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	RetryJitter      time.Duration
	RetryRandomSeed  int64
	RetryMultiplier  float64
	RetryMaxDuration time.Duration
}

type Proxy struct {
	userAgent       string
	httpClient      *http.Client
	content         *contentCache
	probe           *probeCache
	group           singleflight.Group
	robots          RobotsChecker
	rateLimiter     limiter.RateLimiter
	sink            telemetry.Sink
	probeTimeout    time.Duration
	retrieveTimeout time.Duration
	retryParam      retry.RetryParam
}

func NewProxy(cfg Config) *Proxy {
	if cfg.Sink == nil {
		cfg.Sink = telemetry.NopSink{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.RetrieveTimeout <= 0 {
		cfg.RetrieveTimeout = defaultRetrieveTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "docsintel/1.0"
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RetryJitter <= 0 {
		cfg.RetryJitter = defaultRetryJitter
	}
	if cfg.RetryRandomSeed == 0 {
		cfg.RetryRandomSeed = time.Now().UnixNano()
	}
	if cfg.RetryMultiplier <= 0 {
		cfg.RetryMultiplier = defaultRetryMultiplier
	}
	if cfg.RetryMaxDuration <= 0 {
		cfg.RetryMaxDuration = defaultRetryMaxDelay
	}

	return &Proxy{
		userAgent:       cfg.UserAgent,
		httpClient:      cfg.HTTPClient,
		content:         newContentCache(cfg.MaxContentBytes, cfg.SuccessTTL, cfg.ErrorTTL, cfg.Sink),
		probe:           newProbeCache(cfg.ProbeCapacity, cfg.SuccessTTL, cfg.ErrorTTL, cfg.Sink),
		robots:          cfg.Robots,
		rateLimiter:     cfg.Limiter,
		sink:            cfg.Sink,
		probeTimeout:    cfg.ProbeTimeout,
		retrieveTimeout: cfg.RetrieveTimeout,
		retryParam: retry.NewRetryParam(
			cfg.RetryBaseDelay,
			cfg.RetryJitter,
			cfg.RetryRandomSeed,
			cfg.RetryAttempts,
			timeutil.NewBackoffParam(cfg.RetryBaseDelay, cfg.RetryMultiplier, cfg.RetryMaxDuration),
		),
	}
}

// UserAgent returns the identifier the proxy sends on every http(s)
// request, so callers that need to report it (e.g. a robots-disallow
// error naming the blocked user agent) don't have to duplicate the
// default.
func (p *Proxy) UserAgent() string { return p.userAgent }

// Probe reports whether rawURL exists (HEAD for http(s), stat for
// file://), without retrieving its body.
func (p *Proxy) Probe(ctx context.Context, rawURL string) (bool, error) {
	if cached, ok := p.probe.getFresh(rawURL); ok {
		if cached.isError {
			return false, &CacheError{Message: cached.errMessage, Retryable: true, Cause: ErrCauseNetworkFailure}
		}
		return cached.exists, nil
	}

	v, err, _ := p.group.Do("probe:"+rawURL, func() (interface{}, error) {
		exists, cacheErr := p.doProbe(ctx, rawURL)
		if cacheErr != nil {
			// Cached regardless of retryability: doProbe has already run its
			// bounded retries by this point, so a retryable cause (timeout,
			// 429, 5xx) reaching here is just as exhausted as a permanent one
			// and must not trigger a fresh retry storm on the next query.
			p.probe.putError(rawURL, cacheErr.Error())
			return false, cacheErr
		}
		p.probe.putSuccess(rawURL, exists)
		return exists, nil
	})

	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (p *Proxy) doProbe(ctx context.Context, rawURL string) (bool, *CacheError) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseUnsupportedScheme}
	}

	if parsed.Scheme == "file" {
		return fileURLExists(rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	_, status, _, cacheErr := p.fetchHTTP(ctx, http.MethodHead, rawURL)
	if cacheErr != nil {
		return false, cacheErr
	}
	return status >= 200 && status < 400, nil
}

// RetrieveBytes returns rawURL's body and content type, from cache if
// fresh.
func (p *Proxy) RetrieveBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	if cached, ok := p.content.getFresh(rawURL); ok {
		if cached.isError {
			return nil, "", &CacheError{Message: cached.errMessage, Retryable: true, Cause: ErrCauseNetworkFailure}
		}
		return cached.body, cached.contentType, nil
	}

	type result struct {
		body        []byte
		contentType string
	}

	v, err, _ := p.group.Do("get:"+rawURL, func() (interface{}, error) {
		body, contentType, cacheErr := p.doRetrieve(ctx, rawURL)
		if cacheErr != nil {
			// Cached regardless of retryability: doRetrieve has already run
			// its bounded retries by this point, so a retryable cause
			// (timeout, 429, 5xx) reaching here is just as exhausted as a
			// permanent one and must not trigger a fresh retry storm on the
			// next query.
			p.content.putError(rawURL, cacheErr.Error())
			return nil, cacheErr
		}
		p.content.putSuccess(rawURL, body, contentType)
		return result{body: body, contentType: contentType}, nil
	})

	if err != nil {
		return nil, "", err
	}
	r := v.(result)
	return r.body, r.contentType, nil
}

// ContentHash returns the blake3 fingerprint stored alongside rawURL's
// cached body, if a fresh successful entry exists. Callers use this to
// notice a coalesced or re-fetched entry has actually changed without
// re-parsing its body — e.g. to skip re-detecting a structure processor
// against a page whose bytes are unchanged since the last detection.
func (p *Proxy) ContentHash(rawURL string) (string, bool) {
	cached, ok := p.content.getFresh(rawURL)
	if !ok || cached.isError {
		return "", false
	}
	return cached.contentHash, true
}

// RetrieveText returns rawURL's body decoded as text. Non-textual content
// types are rejected rather than silently decoded.
func (p *Proxy) RetrieveText(ctx context.Context, rawURL string) (string, error) {
	body, contentType, err := p.RetrieveBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !isTextual(contentType) {
		return "", &CacheError{
			Message:   fmt.Sprintf("content-type %q is not textual", contentType),
			Retryable: false,
			Cause:     ErrCauseNonTextualContent,
		}
	}
	return decodeText(body), nil
}

func (p *Proxy) doRetrieve(ctx context.Context, rawURL string) ([]byte, string, *CacheError) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseUnsupportedScheme}
	}

	if parsed.Scheme == "file" {
		body, contentType, cacheErr := readFileURL(rawURL)
		return body, contentType, cacheErr
	}

	ctx, cancel := context.WithTimeout(ctx, p.retrieveTimeout)
	defer cancel()

	body, _, contentType, cacheErr := p.fetchHTTP(ctx, http.MethodGet, rawURL)
	if cacheErr != nil {
		return nil, "", cacheErr
	}

	return body, contentType, nil
}

// fetchHTTP applies the robots check and rate-limit wait, then performs
// the request via doRequest, recording fetch telemetry and adjusting
// backoff state.
func (p *Proxy) fetchHTTP(ctx context.Context, method, rawURL string) ([]byte, int, string, *CacheError) {
	host := hostOf(rawURL)

	if p.robots != nil {
		allowed, crawlDelay, err := p.robots.CheckURL(ctx, rawURL)
		if err != nil {
			return nil, 0, "", &CacheError{Message: err.Error(), Retryable: true, Cause: ErrCauseNetworkFailure}
		}
		if !allowed {
			return nil, 0, "", &CacheError{Message: rawURL, Retryable: false, Cause: ErrCauseRobotsDisallow}
		}
		if p.rateLimiter != nil && crawlDelay > 0 {
			p.rateLimiter.SetCrawlDelay(host, crawlDelay)
		}
	}

	if p.rateLimiter != nil {
		if wait := p.rateLimiter.ResolveDelay(host); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, 0, "", &CacheError{Message: ctx.Err().Error(), Retryable: true, Cause: ErrCauseTimeout}
			case <-timer.C:
			}
		}
		p.rateLimiter.MarkLastFetchAsNow(host)
	}

	start := time.Now()
	body, status, contentType, fetchErr := p.doRequestWithRetry(ctx, method, rawURL)
	duration := time.Since(start)

	p.sink.RecordFetch(telemetry.NewFetchEvent(rawURL, status, duration, contentType, false, false))

	if fetchErr != nil {
		if p.rateLimiter != nil && fetchErr.IsRetryable() {
			p.rateLimiter.Backoff(host)
		}
		p.sink.RecordError(telemetry.NewErrorRecord("httpcache", "fetchHTTP", mapErrorToTelemetryCause(fetchErr), fetchErr.Error(), time.Now(), telemetry.NewAttr(telemetry.AttrURL, rawURL), telemetry.NewAttr(telemetry.AttrHost, host)))
		return nil, status, contentType, fetchErr
	}

	if p.rateLimiter != nil {
		p.rateLimiter.ResetBackoff(host)
	}

	return body, status, contentType, nil
}

// FetchRaw performs an unconditional GET with no robots check, no rate
// limiting, and no cache lookup. It exists so the robots package can
// fetch robots.txt itself without recursing back into Allow.
func (p *Proxy) FetchRaw(ctx context.Context, rawURL string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultRobotsTimeout)
	defer cancel()
	body, status, _, err := p.doRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, status, err
	}
	return body, status, nil
}

// doRequestWithRetry wraps doRequest in pkg/retry's exponential backoff,
// so a transient failure (timeout, 429, 5xx) gets a bounded number of
// further attempts before fetchHTTP gives up and the caller sees an error.
// Non-retryable outcomes (404, 403, malformed URL) return on the first
// attempt, same as before this wiring existed.
func (p *Proxy) doRequestWithRetry(ctx context.Context, method, rawURL string) ([]byte, int, string, *CacheError) {
	type requestOutcome struct {
		body        []byte
		status      int
		contentType string
	}

	var lastStatus int
	var lastContentType string

	result := retry.Retry(p.retryParam, func() (requestOutcome, failure.ClassifiedError) {
		body, status, contentType, cacheErr := p.doRequest(ctx, method, rawURL)
		lastStatus, lastContentType = status, contentType
		if cacheErr != nil {
			return requestOutcome{}, cacheErr
		}
		return requestOutcome{body: body, status: status, contentType: contentType}, nil
	})

	if result.IsFailure() {
		if cacheErr, ok := result.Err().(*CacheError); ok {
			return nil, lastStatus, lastContentType, cacheErr
		}
		return nil, lastStatus, lastContentType, &CacheError{Message: result.Err().Error(), Retryable: false, Cause: ErrCauseNetworkFailure}
	}

	out := result.Value()
	return out.body, out.status, out.contentType, nil
}

func (p *Proxy) doRequest(ctx context.Context, method, rawURL string) (body []byte, status int, contentType string, cacheErr *CacheError) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, 0, "", &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseNetworkFailure}
	}
	for key, value := range requestHeaders(p.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, "", &CacheError{Message: err.Error(), Retryable: true, Cause: ErrCauseTimeout}
		}
		return nil, 0, "", &CacheError{Message: err.Error(), Retryable: true, Cause: ErrCauseNetworkFailure}
	}
	defer resp.Body.Close()

	contentType = resp.Header.Get("Content-Type")

	switch {
	case resp.StatusCode == 403:
		return nil, resp.StatusCode, contentType, &CacheError{Message: "access forbidden (403)", Retryable: false, Cause: ErrCauseRequestForbidden}
	case resp.StatusCode == 404:
		return nil, resp.StatusCode, contentType, &CacheError{Message: "not found (404)", Retryable: false, Cause: ErrCauseNotFound}
	case resp.StatusCode == 429:
		return nil, resp.StatusCode, contentType, &CacheError{Message: "rate limited (429)", Retryable: true, Cause: ErrCauseRequestTooMany}
	case resp.StatusCode >= 500:
		return nil, resp.StatusCode, contentType, &CacheError{Message: fmt.Sprintf("server error: %d", resp.StatusCode), Retryable: true, Cause: ErrCauseServerError}
	case resp.StatusCode >= 400:
		return nil, resp.StatusCode, contentType, &CacheError{Message: fmt.Sprintf("client error: %d", resp.StatusCode), Retryable: false, Cause: ErrCauseRequestForbidden}
	}

	if method == http.MethodHead {
		return nil, resp.StatusCode, contentType, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, contentType, &CacheError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadBodyFailure}
	}

	return data, resp.StatusCode, contentType, nil
}

// requestHeaders leaves Accept-Encoding unset: net/http negotiates and
// transparently decompresses gzip on our behalf only when the caller
// hasn't named it explicitly.
func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/json,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
