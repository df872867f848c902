package retry

import (
	"fmt"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "zero attempt"
	ErrExhaustedAttempts RetryErrorCause = "exhausted attempt"
	ErrContextDone       RetryErrorCause = "context done"
)

// RetryError ends a retry loop that never produced a value. Last holds the
// error of the final attempt, if any attempt ran.
type RetryError struct {
	Cause     RetryErrorCause
	Attempts  int
	Retryable bool
	Last      error
}

func (e *RetryError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("retry: %s after %d attempts", e.Cause, e.Attempts)
	}
	return fmt.Sprintf("retry: %s after %d attempts: %v", e.Cause, e.Attempts, e.Last)
}

func (e *RetryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RetryError) IsRetryable() bool {
	return e.Retryable
}

func (e *RetryError) Unwrap() error {
	return e.Last
}

// Is matches any *RetryError so callers can test with errors.Is(err, &RetryError{}).
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}
