package pricer

import (
	"context"
	"math/rand"
	"time"
)

// retryPolicy bounds how often a failed feed call is reattempted. The delay
// doubles between attempts up to maxDelay, with jitter so concurrent lookups
// do not hit the feed in lockstep.
type retryPolicy struct {
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64
}

// feedRetry is the policy shared by the exchange-backed pricers. Only the
// network call is retried; an empty result is a definitive answer.
var feedRetry = retryPolicy{
	attempts:     3,
	initialDelay: 200 * time.Millisecond,
	maxDelay:     2 * time.Second,
	jitter:       0.1,
}

// fetchWithRetry runs fn until it succeeds or the policy's attempts are
// spent, sleeping between attempts. Cancelling ctx aborts the wait.
func fetchWithRetry[T any](ctx context.Context, policy retryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var err error

	delay := policy.initialDelay
	for attempt := 0; attempt <= policy.attempts; attempt++ {
		if attempt > 0 {
			jittered := time.Duration(float64(delay) * (1 + policy.jitter*(rand.Float64()*2-1)))
			if jittered < 0 {
				jittered = 0
			}
			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case <-time.After(jittered):
			}

			delay *= 2
			if delay > policy.maxDelay {
				delay = policy.maxDelay
			}
		}

		var result T
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
	}

	var zero T
	return zero, err
}
