package adapter

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/urlutil"
)

// SerpAPI queries the google_shopping engine. It has no featured listing:
// an empty query returns nothing without a network call, as does a missing
// API key. A non-empty site scopes results to one retailer domain.
type SerpAPI struct {
	httpSource
	endpoint string
	apiKey   string
	site     string
}

type serpPage struct {
	ShoppingResults []json.RawMessage `json:"shopping_results"`
}

type serpItem struct {
	ProductID      flexID           `json:"product_id"`
	Title          string           `json:"title"`
	Price          pricing.RawPrice `json:"price"`
	ExtractedPrice pricing.RawPrice `json:"extracted_price"`
	Thumbnail      string           `json:"thumbnail"`
}

func NewSerpAPI(deps Deps, endpoint, apiKey string) *SerpAPI {
	return &SerpAPI{
		httpSource: newHTTPSource(SerpAPIID, "Google Shopping", deps),
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// NewStoreSearch builds a SerpAPI adapter restricted to one retailer.
func NewStoreSearch(deps Deps, store Store, endpoint, apiKey string) *SerpAPI {
	return &SerpAPI{
		httpSource: newHTTPSource(store.ID, store.Label, deps),
		endpoint:   endpoint,
		apiKey:     apiKey,
		site:       store.Domain,
	}
}

func (s *SerpAPI) Site() string {
	return s.site
}

func (s *SerpAPI) Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if s.apiKey == "" {
		s.deps.MetadataSink.RecordError(
			time.Now(),
			"adapter",
			s.label+".Fetch",
			metadata.CausePolicyDisallow,
			"serpapi key not configured",
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrSource, s.id)},
		)
		return nil, nil
	}

	q := query
	if s.site != "" {
		q = query + " site:" + s.site
	}
	target, err := urlutil.Join(s.endpoint, "", url.Values{
		"engine":  {"google_shopping"},
		"q":       {q},
		"api_key": {s.apiKey},
	})
	if err != nil {
		return nil, s.fail(&AdapterError{Message: err.Error(), Cause: ErrCauseInvalidEndpoint, Source: s.id, Err: err})
	}

	var page serpPage
	if err := s.getJSON(ctx, target, &page); err != nil {
		return nil, err
	}

	return normalizeItems(&s.httpSource, page.ShoppingResults, func(it serpItem) rawFields {
		return rawFields{
			id:        string(it.ProductID),
			name:      it.Title,
			extracted: it.ExtractedPrice,
			price:     it.Price,
			category:  SearchEngineCategory,
			image:     it.Thumbnail,
		}
	}), nil
}
