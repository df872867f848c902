package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError   FileErrorCause = "path error"
	ErrCauseTempError   FileErrorCause = "temp file error"
	ErrCauseWriteError  FileErrorCause = "write error"
	ErrCauseRenameError FileErrorCause = "rename error"
)

// FileError reports a filesystem failure on Path. Write-side failures are
// retryable; a directory that cannot be created is not.
type FileError struct {
	Cause     FileErrorCause
	Path      string
	Retryable bool
	Err       error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Cause, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
