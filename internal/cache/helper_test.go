package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metadataSinkMock struct {
	metadata.NoopSink
	mu     sync.Mutex
	causes []metadata.ErrorCause
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

func (m *metadataSinkMock) Causes() []metadata.ErrorCause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]metadata.ErrorCause(nil), m.causes...)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func sampleRecords() []product.Record {
	return []product.Record{
		{
			ID:       "1",
			Name:     "Fjallraven Backpack",
			Price:    decimal.RequireFromString("9125.85"),
			Category: "men's clothing",
			Image:    "https://fakestoreapi.com/img/1.jpg",
			Source:   "FakeStore",
		},
		{
			ID:       "fakestore_2",
			Name:     product.DefaultName,
			Price:    decimal.Zero,
			Category: product.DefaultCategory,
			Image:    product.PlaceholderImage,
			Source:   "FakeStore",
		},
	}
}

func assertSameRecords(t *testing.T, want, got []product.Record) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Truef(t, want[i].Price.Equal(got[i].Price), "price %d: want %s got %s", i, want[i].Price, got[i].Price)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Image, got[i].Image)
		assert.Equal(t, want[i].Source, got[i].Source)
	}
}
