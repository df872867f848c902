package metadata_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder_RecordError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := metadata.NewRecorder(zap.New(core))

	r.RecordError(
		time.Now(),
		"adapter",
		"DummyJSON.Fetch",
		metadata.CauseNetworkFailure,
		"connection refused",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrSource, "dummyjson")},
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "adapter", fields["package"])
	assert.Equal(t, "network_failure", fields["cause"])
	assert.Equal(t, "dummyjson", fields["source"])
}

func TestRecorder_Events(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := metadata.NewRecorder(zap.New(core))

	r.RecordFetch("https://dummyjson.com/products", 200, time.Millisecond, "application/json", 0)
	r.RecordCache("dummyjson", "abc", metadata.CacheHit)
	r.RecordSource("dummyjson", metadata.SourceOK, 3, time.Millisecond)
	r.RecordAggregate(metadata.AggregateStats{Query: "phone", Sources: 2, Records: 3})

	assert.Equal(t, 1, logs.FilterMessage("fetch").Len())
	assert.Equal(t, 1, logs.FilterMessage("cache").Len())
	assert.Equal(t, 1, logs.FilterMessage("source").Len())
	assert.Equal(t, 1, logs.FilterMessage("aggregate").Len())
}

func TestNewRecorder_NilLogger(t *testing.T) {
	r := metadata.NewRecorder(nil)
	assert.NotPanics(t, func() {
		r.RecordCache("fakestore", "k", metadata.CacheMiss)
	})
}

func TestFanout(t *testing.T) {
	coreA, logsA := observer.New(zapcore.DebugLevel)
	coreB, logsB := observer.New(zapcore.DebugLevel)

	sink := metadata.Fanout{
		metadata.NewRecorder(zap.New(coreA)),
		&metadata.NoopSink{},
		metadata.NewRecorder(zap.New(coreB)),
	}
	sink.RecordSource("serpapi", metadata.SourceFailed, 0, time.Second)

	assert.Equal(t, 1, logsA.Len())
	assert.Equal(t, 1, logsB.Len())
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "unknown", metadata.CauseUnknown.String())
	assert.Equal(t, "storage_failure", metadata.CauseStorageFailure.String())
	assert.Equal(t, "policy_disallow", metadata.CausePolicyDisallow.String())
	assert.Equal(t, "unknown", metadata.ErrorCause(99).String())
}
