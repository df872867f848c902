package orchestrator_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/shopspring/decimal"
)

type stubAdapter struct {
	id      string
	records []product.Record
	err     failure.ClassifiedError
	delay   time.Duration
	// block holds the call until the channel closes, regardless of ctx
	block     chan struct{}
	honourCtx bool
	panicWith any
	calls     atomic.Int32
	onCall    func()
	afterCall func()
}

func (s *stubAdapter) ID() string    { return s.id }
func (s *stubAdapter) Label() string { return s.id }

func (s *stubAdapter) Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError) {
	s.calls.Add(1)
	if s.onCall != nil {
		s.onCall()
	}
	if s.afterCall != nil {
		defer s.afterCall()
	}
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.block != nil {
		<-s.block
	}
	if s.delay > 0 {
		if s.honourCtx {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, &adapter.AdapterError{
					Message:   ctx.Err().Error(),
					Retryable: true,
					Cause:     adapter.ErrCauseFetch,
					Source:    s.id,
					Err:       ctx.Err(),
				}
			}
		} else {
			time.Sleep(s.delay)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubAdapter) Calls() int {
	return int(s.calls.Load())
}

func rec(id, price, source string) product.Record {
	return product.Record{
		ID:       id,
		Name:     "item " + id,
		Price:    decimal.RequireFromString(price),
		Category: product.DefaultCategory,
		Image:    product.PlaceholderImage,
		Source:   source,
	}
}

func ids(records []product.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func fetchFailure(source string) *adapter.AdapterError {
	return &adapter.AdapterError{
		Message:   "connection refused",
		Retryable: true,
		Cause:     adapter.ErrCauseFetch,
		Source:    source,
	}
}

type sourceEvent struct {
	id      string
	outcome metadata.SourceOutcome
	records int
}

type cacheEvent struct {
	id      string
	outcome metadata.CacheOutcome
}

type metadataSinkMock struct {
	metadata.NoopSink
	mu         sync.Mutex
	sources    []sourceEvent
	caches     []cacheEvent
	causes     []metadata.ErrorCause
	aggregates []metadata.AggregateStats
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.causes = append(m.causes, cause)
}

func (m *metadataSinkMock) RecordCache(sourceID string, key string, outcome metadata.CacheOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, cacheEvent{id: sourceID, outcome: outcome})
}

func (m *metadataSinkMock) RecordSource(sourceID string, outcome metadata.SourceOutcome, records int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, sourceEvent{id: sourceID, outcome: outcome, records: records})
}

func (m *metadataSinkMock) RecordAggregate(stats metadata.AggregateStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregates = append(m.aggregates, stats)
}

func (m *metadataSinkMock) SourceOutcome(id string) (metadata.SourceOutcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sources {
		if e.id == id {
			return e.outcome, true
		}
	}
	return "", false
}

func (m *metadataSinkMock) CacheOutcomes(id string) []metadata.CacheOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []metadata.CacheOutcome
	for _, e := range m.caches {
		if e.id == id {
			out = append(out, e.outcome)
		}
	}
	return out
}

func (m *metadataSinkMock) Causes() []metadata.ErrorCause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]metadata.ErrorCause(nil), m.causes...)
}

func (m *metadataSinkMock) Aggregates() []metadata.AggregateStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]metadata.AggregateStats(nil), m.aggregates...)
}

// stalledCache blocks every operation until its context ends, like a
// backend whose packets are dropped.
type stalledCache struct {
	gets         atomic.Int32
	puts         atomic.Int32
	putDeadlines chan bool
}

func newStalledCache() *stalledCache {
	return &stalledCache{putDeadlines: make(chan bool, 16)}
}

func (c *stalledCache) Get(ctx context.Context, key string) ([]product.Record, bool) {
	c.gets.Add(1)
	<-ctx.Done()
	return nil, false
}

func (c *stalledCache) Put(ctx context.Context, key string, records []product.Record) {
	c.puts.Add(1)
	_, hasDeadline := ctx.Deadline()
	c.putDeadlines <- hasDeadline
	<-ctx.Done()
}
