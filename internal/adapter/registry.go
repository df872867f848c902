package adapter

import (
	"fmt"
	"strings"
)

// Registry maps provider ids to adapters and remembers registration order.
type Registry struct {
	order []string
	byID  map[string]SourceAdapter
}

func NewRegistry(adapters ...SourceAdapter) *Registry {
	r := &Registry{byID: make(map[string]SourceAdapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds a, replacing any adapter with the same id in place.
func (r *Registry) Register(a SourceAdapter) {
	id := a.ID()
	if _, exists := r.byID[id]; !exists {
		r.order = append(r.order, id)
	}
	r.byID[id] = a
}

// Get looks an adapter up by id, ignoring case and surrounding space.
func (r *Registry) Get(id string) (SourceAdapter, bool) {
	a, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return a, ok
}

// Select returns the adapters for ids, in the order given.
func (r *Registry) Select(ids ...string) ([]SourceAdapter, error) {
	out := make([]SourceAdapter, 0, len(ids))
	for _, id := range ids {
		a, ok := r.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", id)
		}
		out = append(out, a)
	}
	return out, nil
}

// IDs lists registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) All() []SourceAdapter {
	out := make([]SourceAdapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// NewDefaultRegistry registers every known provider: the three catalog
// APIs, SerpAPI and one site-scoped search per store.
func NewDefaultRegistry(deps Deps, endpoints Endpoints) *Registry {
	e := endpoints.withDefaults()
	r := NewRegistry(
		NewFakeStore(deps, e.FakeStoreURL),
		NewDummyJSON(deps, e.DummyJSONURL),
		NewFakeShop(deps, e.FakeShopURL),
		NewSerpAPI(deps, e.SerpAPIURL, e.SerpAPIKey),
	)
	for _, store := range Stores {
		r.Register(NewStoreSearch(deps, store, e.SerpAPIURL, e.SerpAPIKey))
	}
	return r
}
