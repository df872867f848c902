package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/fetcher"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
)

// httpSource carries what every HTTP-backed adapter shares: identity,
// transport and the normalization pipeline. Provider types embed it.
type httpSource struct {
	id    string
	label string
	deps  Deps
}

func newHTTPSource(id, label string, deps Deps) httpSource {
	if deps.MetadataSink == nil {
		deps.MetadataSink = &metadata.NoopSink{}
	}
	return httpSource{id: id, label: label, deps: deps}
}

func (s *httpSource) ID() string {
	return s.id
}

func (s *httpSource) Label() string {
	return s.label
}

// getJSON fetches rawURL and decodes the body into out.
func (s *httpSource) getJSON(ctx context.Context, rawURL string, out any) failure.ClassifiedError {
	u, err := url.Parse(rawURL)
	if err != nil {
		return s.fail(&AdapterError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidEndpoint,
			Source:  s.id,
			Err:     err,
		})
	}

	param := fetcher.NewFetchParam(*u, s.deps.UserAgent, s.deps.Timeout)
	result, fetchErr := s.deps.Fetcher.Fetch(ctx, param, s.deps.RetryParam)
	if fetchErr != nil {
		// the fetcher has already recorded transport failures
		return &AdapterError{
			Message:   fetchErr.Error(),
			Retryable: fetchErr.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseFetch,
			Source:    s.id,
			Err:       fetchErr,
		}
	}

	if err := json.Unmarshal(result.Body(), out); err != nil {
		return s.fail(&AdapterError{
			Message: err.Error(),
			Cause:   ErrCauseDecode,
			Source:  s.id,
			Err:     err,
		})
	}
	return nil
}

func (s *httpSource) fail(err *AdapterError) *AdapterError {
	s.deps.MetadataSink.RecordError(
		time.Now(),
		"adapter",
		s.label+".Fetch",
		mapAdapterErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrSource, s.id)},
	)
	return err
}

// rawFields is the provider-neutral view of one raw item.
type rawFields struct {
	id        string
	name      string
	extracted pricing.RawPrice
	price     pricing.RawPrice
	category  string
	image     string
}

// normalize maps one raw item to a Record. position is 1-based within the
// provider's result list and backs the synthetic id.
func (s *httpSource) normalize(f rawFields, position int) (product.Record, bool) {
	price, ok := s.deps.Normalizer.Normalize(f.extracted, f.price)
	if !ok {
		return product.Record{}, false
	}

	id := strings.TrimSpace(f.id)
	if id == "" {
		id = fallbackID(s.id, position)
	}

	return product.Record{
		ID:       id,
		Name:     product.CleanName(f.name),
		Price:    price,
		Category: product.CleanCategory(f.category),
		Image:    product.CleanImage(f.image),
		Source:   s.label,
	}, true
}

// normalizeItems decodes each item on its own so a malformed item is
// dropped without discarding its siblings.
func normalizeItems[T any](s *httpSource, items []json.RawMessage, fields func(T) rawFields) []product.Record {
	records := make([]product.Record, 0, len(items))
	for i, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if rec, ok := s.normalize(fields(item), i+1); ok {
			records = append(records, rec)
		}
	}
	return records
}

func fallbackID(sourceID string, position int) string {
	return fmt.Sprintf("%s_%d", sourceID, position)
}

// flexID accepts ids sent as strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			// objects, arrays and booleans carry no usable id
			*f = ""
			return nil
		}
		*f = flexID(n.String())
	}
	return nil
}

// namedCategory accepts a plain string or an object with a name field.
type namedCategory string

func (c *namedCategory) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*c = namedCategory(obj.Name)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			*c = ""
			return nil
		}
		return err
	}
	*c = namedCategory(s)
	return nil
}

// firstImage accepts a list of URLs or a single URL.
type firstImage string

func (f *firstImage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			*f = ""
			return nil
		}
		if len(list) > 0 {
			*f = firstImage(list[0])
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = ""
		return nil
	}
	*f = firstImage(s)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
