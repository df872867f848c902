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

// DummyJSON reads dummyjson.com; listings are wrapped in {"products": [...]}.
type DummyJSON struct {
	httpSource
	endpoint string
}

type dummyJSONPage struct {
	Products []json.RawMessage `json:"products"`
}

type dummyJSONItem struct {
	ID        flexID           `json:"id"`
	Title     string           `json:"title"`
	Price     pricing.RawPrice `json:"price"`
	Category  string           `json:"category"`
	Thumbnail string           `json:"thumbnail"`
}

func NewDummyJSON(deps Deps, endpoint string) *DummyJSON {
	return &DummyJSON{
		httpSource: newHTTPSource(DummyJSONID, "DummyJSON", deps),
		endpoint:   endpoint,
	}
}

func (d *DummyJSON) Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError) {
	target := d.endpoint
	if query != "" {
		var err error
		target, err = urlutil.Join(d.endpoint, "search", url.Values{"q": {query}})
		if err != nil {
			return nil, d.fail(&AdapterError{Message: err.Error(), Cause: ErrCauseInvalidEndpoint, Source: d.id, Err: err})
		}
	}

	var page dummyJSONPage
	if err := d.getJSON(ctx, target, &page); err != nil {
		return nil, err
	}

	return normalizeItems(&d.httpSource, page.Products, func(it dummyJSONItem) rawFields {
		return rawFields{
			id:       string(it.ID),
			name:     it.Title,
			price:    it.Price,
			category: it.Category,
			image:    it.Thumbnail,
		}
	}), nil
}
