package adapter

import (
	"fmt"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

type AdapterErrorCause string

const (
	ErrCauseInvalidEndpoint AdapterErrorCause = "invalid endpoint"
	ErrCauseFetch           AdapterErrorCause = "fetch failed"
	ErrCauseDecode          AdapterErrorCause = "malformed payload"
)

type AdapterError struct {
	Message   string
	Retryable bool
	Cause     AdapterErrorCause
	Source    string
	Err       error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter error: %s: %s: %s", e.Source, e.Cause, e.Message)
}

func (e *AdapterError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AdapterError) IsRetryable() bool {
	return e.Retryable
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func mapAdapterErrorToMetadataCause(err *AdapterError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDecode:
		return metadata.CauseContentInvalid
	case ErrCauseFetch:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
