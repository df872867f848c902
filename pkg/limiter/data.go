package limiter

import (
	"time"

	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
)

// hostTiming is the pacing state of one provider host.
type hostTiming struct {
	lastFetchAt  time.Time
	hostDelay    time.Duration
	backoffCount int
	backoffDelay time.Duration
}

// readyAt is the earliest instant the next call to the host may start.
func (h hostTiming) readyAt(baseDelay time.Duration) time.Time {
	if h.lastFetchAt.IsZero() {
		return time.Time{}
	}
	return h.lastFetchAt.Add(timeutil.MaxDuration([]time.Duration{baseDelay, h.hostDelay, h.backoffDelay}))
}

func (h hostTiming) LastFetchAt() time.Time      { return h.lastFetchAt }
func (h hostTiming) HostDelay() time.Duration    { return h.hostDelay }
func (h hostTiming) BackoffCount() int           { return h.backoffCount }
func (h hostTiming) BackOffDelay() time.Duration { return h.backoffDelay }
