package adapter

import (
	"context"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/fetcher"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/retry"
)

// SourceAdapter fetches one provider and normalizes its payload.
//
// An empty query asks for the provider's featured listing. On any failure
// the returned slice is empty and the error describes what went wrong;
// callers are expected to degrade it to an empty contribution.
type SourceAdapter interface {
	ID() string
	Label() string
	Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError)
}

const (
	FakeStoreID = "fakestore"
	DummyJSONID = "dummyjson"
	FakeShopID  = "fakeshop"
	SerpAPIID   = "serpapi"
)

const (
	DefaultFakeStoreURL = "https://fakestoreapi.com/products"
	DefaultDummyJSONURL = "https://dummyjson.com/products"
	DefaultFakeShopURL  = "https://api.escuelajs.co/api/v1/products"
	DefaultSerpAPIURL   = "https://serpapi.com/search"

	// SearchEngineCategory is the category given to every search-engine result.
	SearchEngineCategory = "Google Shopping"
)

// Deps are the collaborators shared by every HTTP-backed adapter.
type Deps struct {
	Fetcher      fetcher.Fetcher
	RetryParam   retry.RetryParam
	UserAgent    string
	Timeout      time.Duration
	Normalizer   pricing.Normalizer
	MetadataSink metadata.MetadataSink
}

// Endpoints locates each provider. Zero values fall back to the public APIs.
type Endpoints struct {
	FakeStoreURL string
	DummyJSONURL string
	FakeShopURL  string
	SerpAPIURL   string
	SerpAPIKey   string
}

func (e Endpoints) withDefaults() Endpoints {
	if e.FakeStoreURL == "" {
		e.FakeStoreURL = DefaultFakeStoreURL
	}
	if e.DummyJSONURL == "" {
		e.DummyJSONURL = DefaultDummyJSONURL
	}
	if e.FakeShopURL == "" {
		e.FakeShopURL = DefaultFakeShopURL
	}
	if e.SerpAPIURL == "" {
		e.SerpAPIURL = DefaultSerpAPIURL
	}
	return e
}

// Store is a retailer searched through SerpAPI with a site: filter.
type Store struct {
	ID     string
	Label  string
	Domain string
}

var Stores = []Store{
	{ID: "amazon", Label: "Amazon", Domain: "amazon.com"},
	{ID: "bestbuy", Label: "Best Buy", Domain: "bestbuy.com"},
	{ID: "walmart", Label: "Walmart", Domain: "walmart.com"},
	{ID: "ebay", Label: "eBay", Domain: "ebay.com"},
	{ID: "target", Label: "Target", Domain: "target.com"},
	{ID: "newegg", Label: "Newegg", Domain: "newegg.com"},
	{ID: "macys", Label: "Macy's", Domain: "macys.com"},
	{ID: "nordstrom", Label: "Nordstrom", Domain: "nordstrom.com"},
}

// LookupStore finds a store by id.
func LookupStore(id string) (Store, bool) {
	for _, s := range Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}
