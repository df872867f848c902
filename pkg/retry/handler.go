package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
)

// Retry executes fn up to MaxAttempts times, sleeping with exponential
// backoff and seeded jitter between attempts. Only retryable errors trigger
// another attempt. Waiting stops early when ctx is done.
//
// A task that fails with a non-retryable error is returned as-is, so callers
// can still inspect their own error type with errors.As.
func Retry[T any](ctx context.Context, retryParam RetryParam, fn func() (T, failure.ClassifiedError)) Result[T] {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			value: zero,
			err: &RetryError{
				Cause:     ErrZeroAttempt,
				Retryable: true,
			},
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	attempt := 0
	for attempt < retryParam.MaxAttempts {
		attempt++
		value, err := fn()
		if err == nil {
			return Result[T]{value: value, attempts: attempt}
		}
		lastErr = err

		if !isErrorRetryable(err) {
			return Result[T]{value: zero, err: err, attempts: attempt}
		}

		// a single attempt keeps the task's own error
		if retryParam.MaxAttempts == 1 {
			return Result[T]{value: zero, err: err, attempts: attempt}
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		delay := timeutil.ExponentialBackoffDelay(attempt, retryParam.Jitter, rng, retryParam.BackoffParam)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result[T]{
				value: zero,
				err: &RetryError{
					Cause:     ErrContextDone,
					Attempts:  attempt,
					Retryable: false,
					Last:      lastErr,
				},
				attempts: attempt,
			}
		case <-timer.C:
		}
	}

	return Result[T]{
		value: zero,
		err: &RetryError{
			Cause:     ErrExhaustedAttempts,
			Attempts:  attempt,
			Retryable: true,
			Last:      lastErr,
		},
		attempts: attempt,
	}
}

// isErrorRetryable checks whether the error exposes IsRetryable.
// Errors that do not are treated as retryable.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}
	return true
}
