package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
MetadataSink receives structured events from the fetch path.

Metadata is write-only: no component may read it back to decide what to
fetch, cache or return. Sinks are called from concurrent adapter workers,
so implementations must be safe for concurrent use.
*/
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)
	RecordCache(sourceID string, key string, outcome CacheOutcome)
	RecordSource(sourceID string, outcome SourceOutcome, records int, duration time.Duration)
	RecordAggregate(stats AggregateStats)
}

// Recorder writes every event as a structured zap entry.
type Recorder struct {
	logger *zap.Logger
}

func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger.Named("metadata")}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	fields := []zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Stringer("cause", cause),
		zap.String("details", details),
	}
	r.logger.Warn("error", append(fields, attrFields(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	r.logger.Debug("fetch",
		zap.String("url", fetchUrl),
		zap.Int("http_status", httpStatus),
		zap.Duration("duration", duration),
		zap.String("content_type", contentType),
		zap.Int("retry_count", retryCount),
	)
}

func (r *Recorder) RecordCache(sourceID string, key string, outcome CacheOutcome) {
	r.logger.Debug("cache",
		zap.String("source", sourceID),
		zap.String("cache_key", key),
		zap.String("outcome", string(outcome)),
	)
}

func (r *Recorder) RecordSource(sourceID string, outcome SourceOutcome, records int, duration time.Duration) {
	r.logger.Info("source",
		zap.String("source", sourceID),
		zap.String("outcome", string(outcome)),
		zap.Int("records", records),
		zap.Duration("duration", duration),
	)
}

func (r *Recorder) RecordAggregate(stats AggregateStats) {
	r.logger.Info("aggregate",
		zap.String("query", stats.Query),
		zap.Int("sources", stats.Sources),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("records", stats.Records),
		zap.Duration("duration", stats.Duration),
	)
}

func attrFields(attrs []Attribute) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	return fields
}

// Fanout forwards every event to each sink in order.
type Fanout []MetadataSink

func (f Fanout) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, details string, attrs []Attribute) {
	for _, s := range f {
		s.RecordError(observedAt, packageName, action, cause, details, attrs)
	}
}

func (f Fanout) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int) {
	for _, s := range f {
		s.RecordFetch(fetchUrl, httpStatus, duration, contentType, retryCount)
	}
}

func (f Fanout) RecordCache(sourceID string, key string, outcome CacheOutcome) {
	for _, s := range f {
		s.RecordCache(sourceID, key, outcome)
	}
}

func (f Fanout) RecordSource(sourceID string, outcome SourceOutcome, records int, duration time.Duration) {
	for _, s := range f {
		s.RecordSource(sourceID, outcome, records, duration)
	}
}

func (f Fanout) RecordAggregate(stats AggregateStats) {
	for _, s := range f {
		s.RecordAggregate(stats)
	}
}

// NoopSink implements MetadataSink but does nothing.
// Tests and library callers can inject it instead of a Recorder.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int) {
}

func (n *NoopSink) RecordCache(sourceID string, key string, outcome CacheOutcome) {}

func (n *NoopSink) RecordSource(sourceID string, outcome SourceOutcome, records int, duration time.Duration) {
}

func (n *NoopSink) RecordAggregate(stats AggregateStats) {}
