package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted wraps the last error after the attempt budget is
// spent. Non-transient errors are never wrapped with it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Retryer re-invokes an operation on transient failures with bounded
// exponential backoff (base delay × 2^attempt). Wrapped operations must
// be safe to invoke more than once; every caller here wraps
// overwrite-style writes, which are.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	isTransient func(error) bool
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRetryer(cfg RetryConfig, isTransient func(error) bool) *Retryer {
	cfg = NormalizeRetryConfig(cfg)
	if isTransient == nil {
		isTransient = func(error) bool { return false }
	}

	return &Retryer{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		isTransient: isTransient,
		sleep:       sleepContext,
	}
}

// Do runs op up to the attempt budget. A non-transient error propagates
// immediately. The backoff sleep blocks only the calling goroutine and
// aborts on context cancellation.
func (r *Retryer) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.baseDelay<<(attempt-1)); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !r.isTransient(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
