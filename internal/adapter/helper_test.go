package adapter_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/fetcher"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/retry"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// metadataSinkMock collects error events
type metadataSinkMock struct {
	metadata.NoopSink
	mu     sync.Mutex
	errors []metadata.ErrorCause
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
	m.errors = append(m.errors, cause)
}

func (m *metadataSinkMock) Errors() []metadata.ErrorCause {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]metadata.ErrorCause(nil), m.errors...)
}

func newTestDeps(sink metadata.MetadataSink) adapter.Deps {
	return adapter.Deps{
		Fetcher: fetcher.NewJSONFetcher(sink, nil),
		RetryParam: retry.NewRetryParam(
			0,
			42,
			1,
			timeutil.NewBackoffParam(10*time.Millisecond, 2.0, 50*time.Millisecond),
		),
		UserAgent:    "adapter-test",
		Timeout:      2 * time.Second,
		Normalizer:   pricing.DefaultNormalizer(),
		MetadataSink: sink,
	}
}

// serveJSON starts a provider fake that answers every request with body and
// captures the last request URL.
func serveJSON(t *testing.T, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.set(r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

type capturedRequest struct {
	mu    sync.Mutex
	count int
	path  string
	query map[string]string
}

func (c *capturedRequest) set(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.path = r.URL.Path
	c.query = map[string]string{}
	for k, v := range r.URL.Query() {
		c.query[k] = v[0]
	}
}

func (c *capturedRequest) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func assertPrice(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "expected price %s, got %s", want, got)
}

// assertWellFormed checks the invariants every normalized record must hold.
func assertWellFormed(t *testing.T, records []product.Record) {
	t.Helper()
	for _, r := range records {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Category)
		assert.NotEmpty(t, r.Source)
		assert.False(t, r.Price.IsNegative(), "price must be non-negative: %s", r.Price)
		assert.Regexp(t, `^https?://`, r.Image)
	}
}

func (c *capturedRequest) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

func (c *capturedRequest) Query(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query[key]
}
