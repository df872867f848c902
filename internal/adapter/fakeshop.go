package adapter

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/urlutil"
)

// FakeShop reads the Platzi fake store API: a bare array whose category is
// an object and whose images are a list.
type FakeShop struct {
	httpSource
	endpoint string
}

type fakeShopItem struct {
	ID       flexID           `json:"id"`
	Title    string           `json:"title"`
	Price    pricing.RawPrice `json:"price"`
	Category namedCategory    `json:"category"`
	Images   firstImage       `json:"images"`
}

func NewFakeShop(deps Deps, endpoint string) *FakeShop {
	return &FakeShop{
		httpSource: newHTTPSource(FakeShopID, "FakeShop", deps),
		endpoint:   endpoint,
	}
}

func (f *FakeShop) Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError) {
	target := f.endpoint
	if query != "" {
		var err error
		target, err = urlutil.Join(f.endpoint, "", url.Values{"title": {query}})
		if err != nil {
			return nil, f.fail(&AdapterError{Message: err.Error(), Cause: ErrCauseInvalidEndpoint, Source: f.id, Err: err})
		}
	}

	var items []json.RawMessage
	if err := f.getJSON(ctx, target, &items); err != nil {
		return nil, err
	}

	return normalizeItems(&f.httpSource, items, func(it fakeShopItem) rawFields {
		return rawFields{
			id:       string(it.ID),
			name:     it.Title,
			price:    it.Price,
			category: string(it.Category),
			image:    string(it.Images),
		}
	}), nil
}
