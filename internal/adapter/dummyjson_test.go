package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/fetcher"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dummyJSONPayload = `{
	"products": [
		{"id": 1, "title": "Essence Mascara Lash Princess", "price": 9.99, "category": "beauty", "thumbnail": "https://cdn.dummyjson.com/products/images/beauty/1/thumbnail.png"},
		{"id": 2, "title": "Eyeshadow Palette", "price": 19.99, "category": "beauty", "thumbnail": "not a url"}
	],
	"total": 194,
	"skip": 0,
	"limit": 30
}`

func TestDummyJSON_Fetch_Featured(t *testing.T) {
	server, captured := serveJSON(t, dummyJSONPayload)
	a := adapter.NewDummyJSON(newTestDeps(&metadataSinkMock{}), server.URL+"/products")

	records, err := a.Fetch(context.Background(), "")
	require.Nil(t, err)
	assert.Equal(t, "/products", captured.Path())
	require.Len(t, records, 2)
	assertWellFormed(t, records)

	assert.Equal(t, "DummyJSON", records[0].Source)
	assertPrice(t, "829.17", records[0].Price)
	assert.Equal(t, "https://cdn.dummyjson.com/products/images/beauty/1/thumbnail.png", records[0].Image)
}

func TestDummyJSON_Fetch_Search(t *testing.T) {
	server, captured := serveJSON(t, `{"products": [{"id": 121, "title": "iPhone 5s", "price": 199.99, "category": "smartphones", "thumbnail": "https://cdn.dummyjson.com/p/121.png"}]}`)
	a := adapter.NewDummyJSON(newTestDeps(&metadataSinkMock{}), server.URL+"/products")

	records, err := a.Fetch(context.Background(), "iphone")
	require.Nil(t, err)
	assert.Equal(t, "/products/search", captured.Path())
	assert.Equal(t, "iphone", captured.Query("q"))
	require.Len(t, records, 1)
	assert.Equal(t, "121", records[0].ID)
}

func TestDummyJSON_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sink := &metadataSinkMock{}
	a := adapter.NewDummyJSON(newTestDeps(sink), server.URL)

	records, err := a.Fetch(context.Background(), "")
	require.NotNil(t, err)
	assert.Nil(t, records)

	var adapterErr *adapter.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, adapter.ErrCauseFetch, adapterErr.Cause)
	assert.True(t, adapterErr.IsRetryable())

	var fetchErr *fetcher.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, fetcher.ErrCauseRequest5xx, fetchErr.Cause)
	assert.Contains(t, sink.Errors(), metadata.CauseNetworkFailure)
}

func TestDummyJSON_Fetch_MalformedJSON(t *testing.T) {
	server, _ := serveJSON(t, `{"products": [`)
	a := adapter.NewDummyJSON(newTestDeps(&metadataSinkMock{}), server.URL)

	records, err := a.Fetch(context.Background(), "")
	require.NotNil(t, err)
	assert.Empty(t, records)
}
