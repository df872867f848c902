package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
)

const namespace = "aggregator"

var defaultBuckets = []float64{
	0.005,
	0.01, // 10ms
	0.025,
	0.05,
	0.1, // 100ms
	0.25,
	0.5,
	1.0, // 1s
	2.5,
	5.0,
	10.0, // 10s
	15.0,
}

// Metrics owns a private registry so several instances can coexist in one
// process (tests, embedded servers) without duplicate registration panics.
// It satisfies metadata.MetadataSink.
type Metrics struct {
	registry        *prometheus.Registry
	cacheLookups    *prometheus.CounterVec
	sourceCalls     *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
	sourceRecords   *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	aggregateRecord prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Result cache events by source and outcome.",
		}, []string{"source", "outcome"}),
		sourceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_calls_total",
			Help:      "Live adapter calls by source and outcome.",
		}, []string{"source", "outcome"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_call_duration_seconds",
			Help:      "Latency of live adapter calls.",
			Buckets:   defaultBuckets,
		}, []string{"source"}),
		sourceRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_records_total",
			Help:      "Normalized records returned by live adapter calls.",
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Recorded errors by package and cause.",
		}, []string{"package", "cause"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP routes.",
			Buckets:   defaultBuckets,
		}, []string{"code", "method", "path"}),
		aggregateRecord: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_records",
			Help:      "Records returned per aggregate call after merging.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.cacheLookups,
		m.sourceCalls,
		m.sourceDuration,
		m.sourceRecords,
		m.fetchErrors,
		m.httpDuration,
		m.aggregateRecord,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware observes request durations labelled by route template, so
// unmatched paths collapse into one series.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "/not-found"
		}
		m.httpDuration.
			WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.fetchErrors.WithLabelValues(packageName, cause.String()).Inc()
}

func (m *Metrics) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int) {
}

func (m *Metrics) RecordCache(sourceID string, key string, outcome metadata.CacheOutcome) {
	m.cacheLookups.WithLabelValues(sourceID, string(outcome)).Inc()
}

func (m *Metrics) RecordSource(sourceID string, outcome metadata.SourceOutcome, records int, duration time.Duration) {
	m.sourceCalls.WithLabelValues(sourceID, string(outcome)).Inc()
	m.sourceDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
	m.sourceRecords.WithLabelValues(sourceID).Add(float64(records))
}

func (m *Metrics) RecordAggregate(stats metadata.AggregateStats) {
	m.aggregateRecord.Observe(float64(stats.Records))
}
