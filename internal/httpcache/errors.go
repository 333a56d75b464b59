package httpcache

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseTimeout            ErrorCause = "timeout"
	ErrCauseNetworkFailure     ErrorCause = "network issues"
	ErrCauseReadBodyFailure    ErrorCause = "failed to read response body"
	ErrCauseNonTextualContent  ErrorCause = "non-textual content"
	ErrCauseRequestForbidden   ErrorCause = "forbidden"
	ErrCauseRequestTooMany     ErrorCause = "too many requests"
	ErrCauseServerError        ErrorCause = "5xx"
	ErrCauseNotFound           ErrorCause = "not found"
	ErrCauseFileNotFound       ErrorCause = "local file not found"
	ErrCauseUnsupportedScheme  ErrorCause = "unsupported url scheme"
	ErrCauseRobotsDisallow     ErrorCause = "disallowed by robots.txt"
)

// CacheError classifies a failure retrieving a URL through the cache proxy,
// whether the failure originated on the network, in a local file:// read,
// or from robots.txt policy.
type CacheError struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("httpcache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}

// mapErrorToTelemetryCause maps cache-local error semantics to the
// canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapErrorToTelemetryCause(err *CacheError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseServerError:
		return telemetry.CauseNetworkFailure
	case ErrCauseRequestTooMany, ErrCauseRequestForbidden, ErrCauseRobotsDisallow:
		return telemetry.CausePolicyDisallow
	case ErrCauseNonTextualContent:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}

// IsRobotsDisallowed reports whether err is a CacheError caused by
// robots.txt disallowing the request, so callers above the proxy (the
// inventory/structure processors, the detection orchestrator) can tell
// "blocked by policy" apart from an ordinary "format absent" miss.
func IsRobotsDisallowed(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr) && cacheErr.Cause == ErrCauseRobotsDisallow
}

var _ = failure.ClassifiedError(&CacheError{})
