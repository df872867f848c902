package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/limiter"
	"github.com/rohmanhakim/product-aggregator/pkg/retry"
)

/*
Responsibilities

- Perform GET requests against provider APIs
- Apply browser-like headers and per-call timeouts
- Space calls per host and back off on 429
- Classify responses

The fetcher never decodes payloads; it only returns bytes and metadata.
Every call is recorded through the metadata sink.
*/

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 16 << 20

type JSONFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
}

func NewJSONFetcher(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
) *JSONFetcher {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &JSONFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
		rateLimiter:  rateLimiter,
	}
}

// WithHTTPClient swaps the underlying client, e.g. for custom transports.
func (j *JSONFetcher) WithHTTPClient(client *http.Client) *JSONFetcher {
	if client != nil {
		j.httpClient = client
	}
	return j
}

func (j *JSONFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "JSONFetcher.Fetch"
	startTime := time.Now()

	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return j.performFetch(ctx, fetchParam)
	}
	outcome := retry.Retry(ctx, retryParam, fetchTask)

	var statusCode int
	var contentType string
	if outcome.IsSuccess() {
		result := outcome.Value()
		statusCode = result.Code()
		contentType = result.ContentType()
	} else {
		var fetchErr *FetchError
		if errors.As(outcome.Err(), &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
	}

	j.metadataSink.RecordFetch(
		redactURL(fetchParam.fetchUrl),
		statusCode,
		time.Since(startTime),
		contentType,
		outcome.Attempts(),
	)

	if outcome.IsFailure() {
		j.recordError(callerMethod, fetchParam.fetchUrl, outcome.Err())
		return FetchResult{}, outcome.Err()
	}
	return outcome.Value(), nil
}

func (j *JSONFetcher) recordError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		cause = mapFetchErrorToMetadataCause(fetchErr)
	} else if errors.Is(err, &retry.RetryError{}) {
		cause = metadata.CauseNetworkFailure
	}

	j.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, redactURL(fetchUrl)),
			metadata.NewAttr(metadata.AttrHost, fetchUrl.Host),
		},
	)
}

func (j *JSONFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.fetchUrl
	host := fetchUrl.Host

	if fetchParam.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fetchParam.timeout)
		defer cancel()
	}

	if j.rateLimiter != nil {
		if err := j.rateLimiter.Wait(ctx, host); err != nil {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("waiting for %s: %v", host, err),
				Retryable: false,
				Cause:     ErrCauseTimeout,
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
		}
	}
	for key, value := range requestHeaders(fetchParam.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full URL, which may carry credentials
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		cause := ErrCauseNetworkFailure
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			cause = ErrCauseTimeout
		}
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     cause,
		}
	}
	defer resp.Body.Close()

	if fetchErr := classifyStatus(resp.StatusCode); fetchErr != nil {
		if resp.StatusCode == http.StatusTooManyRequests && j.rateLimiter != nil {
			j.rateLimiter.Backoff(host)
		}
		return FetchResult{}, fetchErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !isJSONContent(contentType) {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("unexpected content type: %s", contentType),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	if j.rateLimiter != nil {
		j.rateLimiter.ResetBackoff(host)
	}

	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
	}, nil
}

func classifyStatus(code int) *FetchError {
	switch {
	case code >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", code),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: code,
		}
	case code == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: code,
		}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &FetchError{
			Message:    fmt.Sprintf("access denied (%d)", code),
			Retryable:  false,
			Cause:      ErrCauseRequestForbidden,
			StatusCode: code,
		}
	case code >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: code,
		}
	case code >= 300:
		// the client follows redirects itself; landing here means it gave up
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: code,
		}
	}
	return nil
}

// isJSONContent accepts JSON media types and a missing header. Some
// providers label JSON as text/plain; HTML error pages are rejected.
func isJSONContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return contentType == "" ||
		strings.Contains(contentType, "json") ||
		strings.HasPrefix(contentType, "text/plain")
}

// secretParams are query parameters never written to metadata.
var secretParams = []string{"api_key", "apikey", "key", "token"}

func redactURL(u url.URL) string {
	q := u.Query()
	changed := false
	for _, name := range secretParams {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json,text/plain;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
