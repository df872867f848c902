package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
)

const DefaultRedisPrefix = "aggregator:results:"

// redisEntry is the stored value. Redis expires the key after ttl; the
// embedded storedAt keeps expiry exact under an injected clock.
type redisEntry struct {
	StoredAt time.Time        `json:"stored_at"`
	Records  []product.Record `json:"records"`
}

// RedisCache shares entries between processes through one redis key per
// entry. Any redis error is a miss on read and a recorded no-op on write.
type RedisCache struct {
	client       redis.Cmdable
	prefix       string
	ttl          time.Duration
	clock        timeutil.Clock
	metadataSink metadata.MetadataSink
}

func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration, metadataSink metadata.MetadataSink) *RedisCache {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{
		client:       client,
		prefix:       prefix,
		ttl:          ttl,
		clock:        time.Now,
		metadataSink: metadataSink,
	}
}

func (c *RedisCache) WithClock(clock timeutil.Clock) *RedisCache {
	if clock != nil {
		c.clock = clock
	}
	return c
}

func (c *RedisCache) redisKey(key string) string {
	return c.prefix + key
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]product.Record, bool) {
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			recordCacheError(c.metadataSink, "RedisCache.Get", &CacheError{
				Message:   err.Error(),
				Retryable: true,
				Cause:     ErrCauseBackendDown,
				Key:       key,
			})
		}
		return nil, false
	}

	entry, err := decodeRedisEntry(data)
	if err != nil {
		recordCacheError(c.metadataSink, "RedisCache.Get", &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCorruptEntry,
			Key:       key,
		})
		return nil, false
	}
	if expired(entry.StoredAt, c.clock(), c.ttl) || len(entry.Records) == 0 {
		return nil, false
	}
	return entry.Records, true
}

func (c *RedisCache) Put(ctx context.Context, key string, records []product.Record) {
	if len(records) == 0 {
		return
	}

	data, err := json.Marshal(redisEntry{StoredAt: c.clock(), Records: records})
	if err != nil {
		recordCacheError(c.metadataSink, "RedisCache.Put", &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Key:       key,
		})
		return
	}

	if err := c.client.Set(ctx, c.redisKey(key), data, c.ttl).Err(); err != nil {
		recordCacheError(c.metadataSink, "RedisCache.Put", &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseBackendDown,
			Key:       key,
		})
	}
}

func decodeRedisEntry(data []byte) (redisEntry, error) {
	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return redisEntry{}, err
	}
	if entry.StoredAt.IsZero() {
		return redisEntry{}, errors.New("entry has no stored_at")
	}
	if err := validateRecords(entry.Records); err != nil {
		return redisEntry{}, err
	}
	return entry, nil
}
