package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rohmanhakim/product-aggregator/pkg/urlutil"
	"github.com/shopspring/decimal"
)

const (
	DefaultName      = "Unknown Product"
	DefaultCategory  = "General"
	PlaceholderImage = "https://via.placeholder.com/300x300?text=No+Image"
)

func init() {
	// prices travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Record is the canonical product shape every adapter produces.
// All fields are populated; adapters substitute defaults for anything missing.
type Record struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
	Source   string          `json:"source"`
}

// HasUsablePrice reports whether the price can take part in ordering.
func (r Record) HasUsablePrice() bool {
	return !r.Price.IsNegative()
}

// ErrIncompleteRecord marks a record missing a field every caller relies on.
var ErrIncompleteRecord = errors.New("incomplete product record")

// Validate reports the first field that breaks the Record contract: every
// text field set, an absolute http(s) image and a non-negative price.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: empty id", ErrIncompleteRecord)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: %s: empty name", ErrIncompleteRecord, r.ID)
	case strings.TrimSpace(r.Category) == "":
		return fmt.Errorf("%w: %s: empty category", ErrIncompleteRecord, r.ID)
	case strings.TrimSpace(r.Source) == "":
		return fmt.Errorf("%w: %s: empty source", ErrIncompleteRecord, r.ID)
	case !urlutil.IsHTTP(r.Image):
		return fmt.Errorf("%w: %s: image %q is not an http url", ErrIncompleteRecord, r.ID, r.Image)
	case !r.HasUsablePrice():
		return fmt.Errorf("%w: %s: negative price %s", ErrIncompleteRecord, r.ID, r.Price)
	}
	return nil
}
