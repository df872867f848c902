package metadata

import "time"

/*
ErrorCause is a closed classification used only for observability
(logging, metrics, reporting). It never drives retry or degradation
decisions; those come from failure.ClassifiedError.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.

  - CauseNetworkFailure: transport errors, timeouts, DNS, 5xx from a provider
  - CausePolicyDisallow: 401/403/429 from a provider, missing API key
  - CauseContentInvalid: non-JSON or malformed provider payloads
  - CauseStorageFailure: cache read/write failures on disk or redis
  - CauseInvariantViolation: internal consistency checks failing, recovered panics
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// CacheOutcome is the result of one cache interaction.
type CacheOutcome string

const (
	CacheHit    CacheOutcome = "hit"
	CacheMiss   CacheOutcome = "miss"
	CacheStored CacheOutcome = "stored"
)

// SourceOutcome is how one adapter call ended.
type SourceOutcome string

const (
	SourceOK       SourceOutcome = "ok"
	SourceEmpty    SourceOutcome = "empty"
	SourceFailed   SourceOutcome = "failed"
	SourceTimedOut SourceOutcome = "timeout"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrSource     AttributeKey = "source"
	AttrQuery      AttributeKey = "query"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrPath       AttributeKey = "path"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrField      AttributeKey = "field"
)

// AggregateStats summarizes one Aggregate call.
type AggregateStats struct {
	Query     string
	Sources   int
	CacheHits int
	Records   int
	Duration  time.Duration
}
