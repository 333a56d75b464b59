// Package inventory implements the built-in inventory processors: Sphinx
// objects.inv, MkDocs search_index.json, and Pydoctor searchindex.json.
// Each processor detects whether a location exposes its format and, once
// detected, yields filterable InventoryObjects.
package inventory

import (
	"fmt"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/rohmanhakim/docsintel/pkg/failure"
)

// ErrorCause classifies why an inventory processor could not detect or
// parse a location's inventory.
type ErrorCause string

const (
	ErrCauseNotFound     ErrorCause = "inventory not found at location"
	ErrCauseFetchFailed  ErrorCause = "failed to retrieve inventory"
	ErrCauseParseFailed  ErrorCause = "inventory could not be parsed"
	ErrCauseEmptyResult  ErrorCause = "inventory was empty"
)

// Error reports an inventory detection or parse failure for one processor.
type Error struct {
	Processor string
	Location  string
	Cause     ErrorCause
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("inventory(%s) at %s: %s: %s", e.Processor, e.Location, e.Cause, e.Reason)
}

func (e *Error) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapErrorToTelemetryCause(err *Error) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return telemetry.CauseNetworkFailure
	case ErrCauseParseFailed, ErrCauseEmptyResult:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseProcessorUnavailable
	}
}

var _ = failure.ClassifiedError(&Error{})
