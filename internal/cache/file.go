package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/product"
	"github.com/rohmanhakim/product-aggregator/pkg/fileutil"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
)

/*
FileCache keeps one <key>.json file per entry under dir.

  - The file holds only the JSON array of records; storedAt is the file's
    modification time.
  - Writes go through a temp file and rename, so readers see either the old
    or the new payload.
  - Expired files are left on disk; expiry is decided at read time only.
*/
type FileCache struct {
	dir          string
	ttl          time.Duration
	clock        timeutil.Clock
	metadataSink metadata.MetadataSink
}

func NewFileCache(dir string, ttl time.Duration, metadataSink metadata.MetadataSink) *FileCache {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &FileCache{
		dir:          dir,
		ttl:          ttl,
		clock:        time.Now,
		metadataSink: metadataSink,
	}
}

// WithClock replaces the time source used for storedAt and expiry.
func (c *FileCache) WithClock(clock timeutil.Clock) *FileCache {
	if clock != nil {
		c.clock = clock
	}
	return c
}

func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) Get(ctx context.Context, key string) ([]product.Record, bool) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			recordCacheError(c.metadataSink, "FileCache.Get", &CacheError{
				Message:   err.Error(),
				Retryable: true,
				Cause:     ErrCauseReadFailure,
				Key:       key,
			})
		}
		return nil, false
	}

	if expired(info.ModTime(), c.clock(), c.ttl) {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		recordCacheError(c.metadataSink, "FileCache.Get", &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
			Key:       key,
		})
		return nil, false
	}

	records, err := decodeRecords(data)
	if err != nil {
		recordCacheError(c.metadataSink, "FileCache.Get", &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCorruptEntry,
			Key:       key,
		})
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}
	return records, true
}

func (c *FileCache) Put(ctx context.Context, key string, records []product.Record) {
	if len(records) == 0 {
		return
	}

	data, err := json.Marshal(records)
	if err != nil {
		recordCacheError(c.metadataSink, "FileCache.Put", &CacheError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Key:       key,
		})
		return
	}

	path := c.path(key)
	if writeErr := fileutil.WriteFileAtomic(path, data, 0644); writeErr != nil {
		recordCacheError(c.metadataSink, "FileCache.Put", &CacheError{
			Message:   writeErr.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		})
		return
	}

	// storedAt comes from the cache clock, not the filesystem's
	now := c.clock()
	if err := os.Chtimes(path, now, now); err != nil {
		recordCacheError(c.metadataSink, "FileCache.Put", &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		})
	}
}
