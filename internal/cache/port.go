package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/hashutil"
)

// DefaultTTL is how long a stored result set stays fresh.
const DefaultTTL = 24 * time.Hour

// ResultCache stores normalized result sets per (source, query) key.
//
// Get never fails: absent, unreadable, corrupt and expired entries are all
// misses. Put ignores empty payloads so a provider outage cannot be cached,
// and swallows storage failures after recording them. Concurrent writers to
// the same key resolve as last writer wins.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]product.Record, bool)
	Put(ctx context.Context, key string, records []product.Record)
}

// Key derives the storage key for a source and query: the blake3-256 hex
// digest of the two joined by a unit separator.
func Key(sourceID, query string) string {
	key, _ := hashutil.HashParts(hashutil.HashAlgoBLAKE3, sourceID, query)
	return key
}

func expired(storedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(storedAt) >= ttl
}

// decodeRecords parses a stored result set. Entries holding any record that
// breaks the Record contract are rejected as a whole.
func decodeRecords(data []byte) ([]product.Record, error) {
	var records []product.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func validateRecords(records []product.Record) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
