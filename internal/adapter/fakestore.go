package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

// FakeStore reads fakestoreapi.com, which returns a bare array and has no
// search endpoint; queries are matched locally against title and category.
type FakeStore struct {
	httpSource
	endpoint string
}

type fakeStoreItem struct {
	ID       flexID           `json:"id"`
	Title    string           `json:"title"`
	Price    pricing.RawPrice `json:"price"`
	Category string           `json:"category"`
	Image    string           `json:"image"`
}

func NewFakeStore(deps Deps, endpoint string) *FakeStore {
	return &FakeStore{
		httpSource: newHTTPSource(FakeStoreID, "FakeStore", deps),
		endpoint:   endpoint,
	}
}

func (f *FakeStore) Fetch(ctx context.Context, query string) ([]product.Record, failure.ClassifiedError) {
	var items []json.RawMessage
	if err := f.getJSON(ctx, f.endpoint, &items); err != nil {
		return nil, err
	}

	records := normalizeItems(&f.httpSource, items, func(it fakeStoreItem) rawFields {
		return rawFields{
			id:       string(it.ID),
			name:     it.Title,
			price:    it.Price,
			category: it.Category,
			image:    it.Image,
		}
	})

	query = strings.TrimSpace(query)
	if query == "" {
		return records, nil
	}
	matched := make([]product.Record, 0, len(records))
	for _, r := range records {
		if containsFold(r.Name, query) || containsFold(r.Category, query) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
