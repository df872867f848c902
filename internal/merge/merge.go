package merge

import (
	"sort"

	"github.com/rohmanhakim/product-aggregator/internal/product"
)

/*
Merge turns the concatenated contributions of every source into the final
result list.

  - Records are deduplicated by ID, the first occurrence in input order wins.
  - The survivors are sorted by price ascending. Equal prices keep their
    input order.
  - A record without a usable price sorts after every priced record.

IDs are compared verbatim. Two providers that happen to share a native id
collapse into one record; the earlier contribution is kept.

The input slice is never modified.
*/
func Merge(records []product.Record) []product.Record {
	return Sort(Dedup(records))
}

// Dedup keeps the first record for each ID, preserving input order.
func Dedup(records []product.Record) []product.Record {
	seen := NewSet[string](len(records))
	unique := make([]product.Record, 0, len(records))
	for _, r := range records {
		if seen.AddIfAbsent(r.ID) {
			unique = append(unique, r)
		}
	}
	return unique
}

// Sort returns a copy of records ordered by price ascending, with unusable
// prices last. The sort is stable.
func Sort(records []product.Record) []product.Record {
	sorted := make([]product.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func less(a, b product.Record) bool {
	aUsable, bUsable := a.HasUsablePrice(), b.HasUsablePrice()
	switch {
	case aUsable && !bUsable:
		return true
	case !aUsable:
		return false
	default:
		return a.Price.LessThan(b.Price)
	}
}
