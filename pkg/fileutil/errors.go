package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/docsintel/pkg/failure"
)

type FileErrorCause string

const (
	ErrCauseNotFound  FileErrorCause = "not found"
	ErrCauseReadError FileErrorCause = "read error"
)

// FileError classifies a failure reading a file:// URL's local path.
type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FileError) IsRetryable() bool {
	return e.Retryable
}
