package structure

import (
	"fmt"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

// ErrorCause classifies why a structure processor could not detect a theme
// or extract content for one object. Extraction failures are always
// per-object and never abort the enclosing ExtractContents call; the
// caller drops the offending document and continues.
type ErrorCause string

const (
	ErrCauseFetchFailed    ErrorCause = "failed to retrieve page"
	ErrCauseAnchorNotFound ErrorCause = "anchor element not found"
	ErrCauseNoStrategy     ErrorCause = "no content strategy matched"
	ErrCauseMarkdownInvalid ErrorCause = "converted markdown failed validation"
)

// Error reports a structure detection or extraction failure for one
// processor, optionally scoped to a single object's URL.
type Error struct {
	Processor string
	Location  string
	Cause     ErrorCause
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("structure(%s) at %s: %s: %s", e.Processor, e.Location, e.Cause, e.Reason)
}

func (e *Error) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapErrorToTelemetryCause(err *Error) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return telemetry.CauseNetworkFailure
	case ErrCauseAnchorNotFound, ErrCauseNoStrategy, ErrCauseMarkdownInvalid:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseProcessorUnavailable
	}
}

var _ = failure.ClassifiedError(&Error{})
