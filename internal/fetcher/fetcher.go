package fetcher

import (
	"context"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/retry"
)

// Fetcher performs one provider GET and hands back the raw JSON body.
// Implementations pace calls per host, retry according to retryParam and
// report failures to their metadata sink before returning them.
type Fetcher interface {
	Fetch(ctx context.Context, fetchParam FetchParam, retryParam retry.RetryParam) (FetchResult, failure.ClassifiedError)
}

var _ Fetcher = (*JSONFetcher)(nil)
