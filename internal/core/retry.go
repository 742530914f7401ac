package core

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds retries of fallible store operations: up to MaxAttempts
// attempts, sleeping BaseDelay before the second attempt and doubling the
// delay after each further failure. Only transient store failures are
// retried; business rejections propagate immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is replaced by tests; nil means time.Sleep.
	sleep func(time.Duration)
}

// DefaultRetryPolicy returns the standard budget: three attempts, one second
// base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs op, retrying transient store failures until the budget is spent.
// After exhaustion the last underlying error is returned wrapped in
// ErrRetryExhausted. ctx is honored between attempts; an in-flight attempt
// always runs to completion, so a cancelled caller never observes a partial
// result, only a full commit or a full rollback.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransientStoreError(err) {
			return err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		log.Printf("WARN: store operation attempt %d/%d failed: %v (retrying in %s)", attempt, maxAttempts, err, delay)
		sleep(delay)
		delay *= 2
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retry aborted: %w (last store error: %v)", ctxErr, lastErr)
		}
	}
	return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
}
