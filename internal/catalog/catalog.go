package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/product"
)

// Aggregator fans a query out to adapters and returns the merged result.
type Aggregator interface {
	Aggregate(ctx context.Context, query string, adapters []adapter.SourceAdapter) []product.Record
}

// FeaturedSources are aggregated for the unfiltered listing.
var FeaturedSources = []string{adapter.FakeStoreID, adapter.DummyJSONID, adapter.FakeShopID}

// SearchSources are always part of a search; enabled stores are appended.
var SearchSources = []string{adapter.SerpAPIID, adapter.DummyJSONID, adapter.FakeShopID}

type SourceInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Service answers the three product questions: everything, one source, and
// a search across sources. It owns source selection; fetching and merging
// belong to the Aggregator.
type Service struct {
	registry   *adapter.Registry
	aggregator Aggregator
	stores     []string
}

// NewService builds a Service. Every id in stores must be a registered
// adapter.
func NewService(registry *adapter.Registry, aggregator Aggregator, stores []string) (*Service, error) {
	enabled := make([]string, 0, len(stores))
	for _, id := range stores {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := registry.Get(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStore, id)
		}
		enabled = append(enabled, id)
	}
	return &Service{
		registry:   registry,
		aggregator: aggregator,
		stores:     enabled,
	}, nil
}

// AllProducts returns the featured listing of every catalog provider.
func (s *Service) AllProducts(ctx context.Context) ([]product.Record, error) {
	adapters, err := s.registry.Select(FeaturedSources...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSource, err)
	}
	return s.aggregator.Aggregate(ctx, "", adapters), nil
}

// BySource returns the featured listing of a single provider.
func (s *Service) BySource(ctx context.Context, sourceID string) ([]product.Record, error) {
	a, ok := s.registry.Get(sourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	return s.aggregator.Aggregate(ctx, "", []adapter.SourceAdapter{a}), nil
}

// Search runs query against the search providers and the enabled stores.
func (s *Service) Search(ctx context.Context, query string) ([]product.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	ids := append(append([]string(nil), SearchSources...), s.stores...)
	adapters, err := s.registry.Select(dedupIDs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSource, err)
	}
	return s.aggregator.Aggregate(ctx, query, adapters), nil
}

// Sources lists every registered provider in registration order.
func (s *Service) Sources() []SourceInfo {
	all := s.registry.All()
	out := make([]SourceInfo, 0, len(all))
	for _, a := range all {
		out = append(out, SourceInfo{ID: a.ID(), Label: a.Label()})
	}
	return out
}

// Stores returns the enabled store ids.
func (s *Service) Stores() []string {
	return append([]string(nil), s.stores...)
}

func dedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
