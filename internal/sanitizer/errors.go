package sanitizer

import (
	"fmt"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

type SanitizationErrorCause string

const (
	ErrCauseBrokenDOM          SanitizationErrorCause = "broken dom"
	ErrCauseUnparseableHTML    SanitizationErrorCause = "unparseable html"
	ErrCauseCompetingRoots     SanitizationErrorCause = "competing roots"
	ErrCauseNoStructuralAnchor SanitizationErrorCause = "no structural anchor"
	ErrCauseMultipleH1NoRoot   SanitizationErrorCause = "multiple h1 without root"
	ErrCauseImpliedMultipleDocs SanitizationErrorCause = "implied multiple documents"
	ErrCauseAmbiguousDOM       SanitizationErrorCause = "ambiguous dom"
)

type SanitizationError struct {
	Message   string
	Retryable bool
	Cause     SanitizationErrorCause
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("sanitization error: %s", e.Cause)
}

func (e *SanitizationError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *SanitizationError) IsRetryable() bool { return e.Retryable }

// mapSanitizationErrorToMetadataCause maps sanitizer-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapSanitizationErrorToMetadataCause(err SanitizationError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseBrokenDOM, ErrCauseUnparseableHTML, ErrCauseCompetingRoots,
		ErrCauseNoStructuralAnchor, ErrCauseMultipleH1NoRoot,
		ErrCauseImpliedMultipleDocs, ErrCauseAmbiguousDOM:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}

var _ = failure.ClassifiedError(&SanitizationError{})
