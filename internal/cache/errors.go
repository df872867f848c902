package cache

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseReadFailure   CacheErrorCause = "read failed"
	ErrCauseCorruptEntry  CacheErrorCause = "corrupt entry"
	ErrCauseEncodeFailure CacheErrorCause = "encode failed"
	ErrCauseWriteFailure  CacheErrorCause = "write failed"
	ErrCauseBackendDown   CacheErrorCause = "backend unavailable"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
	Key       string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapCacheErrorToMetadataCause is observational only.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseReadFailure, ErrCauseWriteFailure, ErrCauseBackendDown:
		return metadata.CauseStorageFailure
	case ErrCauseCorruptEntry:
		return metadata.CauseContentInvalid
	case ErrCauseEncodeFailure:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}

func recordCacheError(sink metadata.MetadataSink, action string, err *CacheError) {
	sink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrCacheKey, err.Key)},
	)
}
