package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/cache"
	"github.com/rohmanhakim/product-aggregator/internal/merge"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 8
	DefaultCallTimeout = 10 * time.Second
	// DefaultCacheTimeout bounds the cache lookups of one request together,
	// and each write-back on its own.
	DefaultCacheTimeout = 2 * time.Second
)

/*
Orchestrator is the only component that decides which sources are called
for a request and what each of them contributes.

  - Every source is looked up in the cache first. A hit is the source's
    contribution and no call is made. Lookups share one cache deadline;
    a slow backend turns into misses.
  - Misses run concurrently, never more than the configured limit at once,
    each under its own call timeout.
  - The call blocks until every started source returned (the barrier), or
    until the aggregate deadline if one is set. Sources still running at the
    deadline finish in the background and their results are cached.
  - Cancelling the caller's context stops every source still running.
  - A failed, timed out or panicking source contributes nothing. Failures
    never cross this boundary; they are recorded and dropped.
  - Non-empty live results are written back to the cache.
  - Contributions are concatenated in the order the sources were given.

Metadata emission is observational only and never alters the outcome.
*/
type Orchestrator struct {
	cache            cache.ResultCache
	metadataSink     metadata.MetadataSink
	concurrency      int
	callTimeout      time.Duration
	aggregateTimeout time.Duration
	cacheTimeout     time.Duration
	clock            timeutil.Clock
}

func New(resultCache cache.ResultCache, metadataSink metadata.MetadataSink) *Orchestrator {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &Orchestrator{
		cache:        resultCache,
		metadataSink: metadataSink,
		concurrency:  DefaultConcurrency,
		callTimeout:  DefaultCallTimeout,
		cacheTimeout: DefaultCacheTimeout,
		clock:        time.Now,
	}
}

// WithConcurrency sets the maximum number of in-flight source calls.
// Values below one are ignored.
func (o *Orchestrator) WithConcurrency(n int) *Orchestrator {
	if n > 0 {
		o.concurrency = n
	}
	return o
}

func (o *Orchestrator) WithCallTimeout(d time.Duration) *Orchestrator {
	if d > 0 {
		o.callTimeout = d
	}
	return o
}

// WithAggregateTimeout bounds a whole Collect call. Zero disables it.
func (o *Orchestrator) WithAggregateTimeout(d time.Duration) *Orchestrator {
	if d >= 0 {
		o.aggregateTimeout = d
	}
	return o
}

// WithCacheTimeout bounds cache I/O. Values below or equal to zero are ignored.
func (o *Orchestrator) WithCacheTimeout(d time.Duration) *Orchestrator {
	if d > 0 {
		o.cacheTimeout = d
	}
	return o
}

func (o *Orchestrator) WithClock(clock timeutil.Clock) *Orchestrator {
	if clock != nil {
		o.clock = clock
	}
	return o
}

func (o *Orchestrator) Concurrency() int {
	return o.concurrency
}

func (o *Orchestrator) CallTimeout() time.Duration {
	return o.callTimeout
}

func (o *Orchestrator) AggregateTimeout() time.Duration {
	return o.aggregateTimeout
}

func (o *Orchestrator) CacheTimeout() time.Duration {
	return o.cacheTimeout
}

// Aggregate collects every contribution and merges them into one
// deduplicated list sorted by price.
func (o *Orchestrator) Aggregate(ctx context.Context, query string, adapters []adapter.SourceAdapter) []product.Record {
	start := o.clock()
	collected, hits := o.collect(ctx, query, adapters)
	merged := merge.Merge(collected)

	o.metadataSink.RecordAggregate(metadata.AggregateStats{
		Query:     query,
		Sources:   len(adapters),
		CacheHits: hits,
		Records:   len(merged),
		Duration:  o.clock().Sub(start),
	})
	return merged
}

// Collect returns the concatenated contributions of adapters, unmerged.
func (o *Orchestrator) Collect(ctx context.Context, query string, adapters []adapter.SourceAdapter) []product.Record {
	collected, _ := o.collect(ctx, query, adapters)
	return collected
}

func (o *Orchestrator) collect(ctx context.Context, query string, adapters []adapter.SourceAdapter) ([]product.Record, int) {
	if len(adapters) == 0 {
		return []product.Record{}, 0
	}

	contributions := newSlots(len(adapters))
	var pending []int
	hits := 0

	lookupCtx, cancelLookups := context.WithTimeout(ctx, o.cacheTimeout)
	for i, a := range adapters {
		key := cache.Key(a.ID(), query)
		if records, ok := o.cache.Get(lookupCtx, key); ok {
			o.metadataSink.RecordCache(a.ID(), key, metadata.CacheHit)
			contributions.set(i, records)
			hits++
			continue
		}
		o.metadataSink.RecordCache(a.ID(), key, metadata.CacheMiss)
		pending = append(pending, i)
	}
	cancelLookups()

	if len(pending) > 0 {
		o.runPending(ctx, query, adapters, pending, contributions)
	}

	return contributions.concat(), hits
}

// runPending calls the uncached adapters and waits for them, bounded by the
// aggregate deadline when one is configured.
func (o *Orchestrator) runPending(
	ctx context.Context,
	query string,
	adapters []adapter.SourceAdapter,
	pending []int,
	contributions *slots,
) {
	waitCtx := ctx
	if o.aggregateTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, o.aggregateTimeout)
		defer cancel()
	}

	// calls outlive the aggregate deadline but not the caller
	callCtx, cancelCalls := context.WithCancel(context.WithoutCancel(ctx))

	var group errgroup.Group
	group.SetLimit(o.concurrency)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancelCalls()
		for _, idx := range pending {
			a := adapters[idx]
			slot := idx
			group.Go(func() error {
				if callCtx.Err() != nil {
					return nil
				}
				records := o.call(callCtx, a, query)
				contributions.set(slot, records)
				return nil
			})
		}
		_ = group.Wait()
	}()

	select {
	case <-done:
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			cancelCalls()
		}
		// stragglers keep running in the background; their slots are no
		// longer read
		contributions.seal()
	}
}

// call runs one adapter and converts every failure into an empty
// contribution.
func (o *Orchestrator) call(ctx context.Context, a adapter.SourceAdapter, query string) (records []product.Record) {
	start := o.clock()
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.metadataSink.RecordError(
				time.Now(),
				"orchestrator",
				"Orchestrator.call",
				metadata.CauseInvariantViolation,
				fmt.Sprintf("adapter panicked: %v", r),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrSource, a.ID()),
					metadata.NewAttr(metadata.AttrQuery, query),
				},
			)
			o.metadataSink.RecordSource(a.ID(), metadata.SourceFailed, 0, o.clock().Sub(start))
			records = nil
		}
	}()

	records, err := a.Fetch(callCtx, query)
	elapsed := o.clock().Sub(start)

	if err != nil {
		outcome := metadata.SourceFailed
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			outcome = metadata.SourceTimedOut
		}
		o.metadataSink.RecordSource(a.ID(), outcome, 0, elapsed)
		return nil
	}
	if len(records) == 0 {
		o.metadataSink.RecordSource(a.ID(), metadata.SourceEmpty, 0, elapsed)
		return nil
	}

	o.metadataSink.RecordSource(a.ID(), metadata.SourceOK, len(records), elapsed)

	key := cache.Key(a.ID(), query)
	putCtx, cancelPut := context.WithTimeout(context.WithoutCancel(ctx), o.cacheTimeout)
	defer cancelPut()
	o.cache.Put(putCtx, key, records)
	o.metadataSink.RecordCache(a.ID(), key, metadata.CacheStored)
	return records
}
