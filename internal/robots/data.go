package robots

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

// DecisionReason explains why a Decision was reached, for logging and the
// detect() diagnostic surface. It never drives control flow on its own —
// callers branch on Decision.Allowed.
type DecisionReason string

const (
	AllowedByRobots     DecisionReason = "allowed_by_robots"
	DisallowedByRobots  DecisionReason = "disallowed_by_robots"
	AllowedNonHTTPURL   DecisionReason = "non_http_scheme"
	AllowedPolicyAbsent DecisionReason = "policy_absent_or_unparseable"
)

// Decision is the outcome of checking one URL against its host's robots.txt
// policy, including any crawl-delay that policy declared.
type Decision struct {
	Allowed    bool
	Reason     DecisionReason
	CrawlDelay *time.Duration
}

type ErrorCause string

const (
	ErrCauseInvalidURL       ErrorCause = "invalid robots.txt URL"
	ErrCauseHTTPFetchFailure ErrorCause = "failed to fetch robots.txt"
	ErrCauseParseFailure     ErrorCause = "failed to parse robots.txt"
)

// RobotsError classifies a failure encountered while resolving a host's
// robots.txt policy. Fetch and parse failures are never surfaced to
// callers of Allow — they resolve to a default-allow Decision instead —
// so this type only escapes for a malformed input URL.
type RobotsError struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RobotsError) IsRetryable() bool {
	return e.Retryable
}

// mapErrorToTelemetryCause maps robots-local error semantics to the
// canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapErrorToTelemetryCause(err *RobotsError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidURL:
		return telemetry.CauseUnknown
	case ErrCauseHTTPFetchFailure:
		return telemetry.CauseNetworkFailure
	case ErrCauseParseFailure:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
