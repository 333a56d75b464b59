package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseConversionFailure ConversionErrorCause = "conversion failed"
)

type ConversionError struct {
	Message   string
	Retryable bool
	Cause     ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s", e.Cause)
}

func (e *ConversionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ConversionError) IsRetryable() bool { return e.Retryable }

func mapConversionErrorToMetadataCause(err ConversionError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseConversionFailure:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}

var _ = failure.ClassifiedError(&ConversionError{})
