package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/core"
)

// RetryPolicy bounds the backoff loop around one provider.
type RetryPolicy struct {
	MaxAttempts int
	BaseWait    time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy retries transient failures up to 5 times with
// exponential backoff between 4s and 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseWait:    4 * time.Second,
		MaxWait:     60 * time.Second,
	}
}

// Retrier decorates a single provider with retry-on-transient-failure.
// Non-retryable failures (empty payloads, malformed schemas, 4xx)
// propagate immediately; the fallback across providers is the loader's
// concern, not the retrier's.
type Retrier struct {
	inner  Provider
	policy RetryPolicy
	log    *zap.Logger

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps inner with the given retry policy.
func NewRetrier(inner Provider, policy RetryPolicy, log *zap.Logger) *Retrier {
	return &Retrier{
		inner:  inner,
		policy: policy,
		log:    log,
		sleep:  sleepCtx,
	}
}

func (r *Retrier) Name() string { return r.inner.Name() }

// FetchDaily calls the wrapped provider, backing off and retrying while
// failures are transient and the attempt budget lasts.
func (r *Retrier) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	wait := r.policy.BaseWait
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.inner.FetchDaily(ctx, symbol, start, end)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !core.IsTransient(err) || attempt == r.policy.MaxAttempts {
			break
		}

		r.log.Warn("provider fetch failed, backing off",
			zap.String("provider", r.inner.Name()),
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
		wait *= 2
		if wait > r.policy.MaxWait {
			wait = r.policy.MaxWait
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
