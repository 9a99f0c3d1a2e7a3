package notion

import (
	"context"
	"time"

	"github.com/yljiang/blogsync/internal/debuglog"
)

// RetryPolicy bounds how often a remote call is reattempted. The delay is
// fixed, not exponential; the API's transient failures clear within seconds.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the scheduled-job defaults.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

// withRetry runs fn up to policy.MaxAttempts times, sleeping policy.Delay
// between attempts. The last error is returned once the budget is spent.
func withRetry[T any](ctx context.Context, policy RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		debuglog.Warnf("%s failed (attempt %d/%d): %v", op, attempt, attempts, err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(policy.Delay):
		}
	}
	return zero, lastErr
}
