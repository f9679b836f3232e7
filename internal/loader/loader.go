// internal/loader/loader.go
package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/cache"
	"github.com/mkarlsen/pulse/internal/core"
	"github.com/mkarlsen/pulse/internal/provider"
)

// Observer receives cache and provider events for instrumentation.
type Observer interface {
	CacheHit(tier string)
	CacheMiss(tier string)
	ProviderFetch(provider, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)                             {}
func (nopObserver) CacheMiss(string)                            {}
func (nopObserver) ProviderFetch(string, string, time.Duration) {}

// Loader resolves daily price windows through three tiers: the in-memory
// range cache, the persistent store, and finally the remote provider
// chain. Remote fetches are retried per provider and merged back into
// the store so later requests stay local.
type Loader struct {
	store     *cache.PriceStore
	ranges    *cache.RangeCache
	providers []provider.Provider
	policy    provider.RetryPolicy
	log       *zap.Logger
	obs       Observer
}

// Option configures a Loader.
type Option func(*Loader)

// WithRetryPolicy overrides the default provider retry policy.
func WithRetryPolicy(p provider.RetryPolicy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithObserver attaches an instrumentation sink.
func WithObserver(o Observer) Option {
	return func(l *Loader) { l.obs = o }
}

// New creates a Loader over the given store, range cache and provider
// chain. Providers are consulted in order; the first success wins.
func New(store *cache.PriceStore, ranges *cache.RangeCache, providers []provider.Provider, log *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		store:     store,
		ranges:    ranges,
		providers: providers,
		policy:    provider.DefaultRetryPolicy(),
		log:       log,
		obs:       nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetPrices returns the daily series for symbol over [start, end]
// inclusive. With refresh set, the local tiers are bypassed and the
// providers are asked for fresh rows, which then replace stored ones.
func (l *Loader) GetPrices(ctx context.Context, symbol string, start, end time.Time, refresh bool) (core.Series, error) {
	if start.After(end) {
		return nil, core.WrapError(core.ErrInvalidRange,
			fmt.Errorf("%s after %s", core.DateKey(start), core.DateKey(end)))
	}

	key := cache.RangeKey(symbol, start, end)

	if !refresh {
		if s, ok := l.ranges.Get(key); ok {
			l.obs.CacheHit("memory")
			return s, nil
		}
		l.obs.CacheMiss("memory")

		covered, err := l.store.Covers(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		if covered {
			stored, err := l.store.Read(ctx, symbol, start, end)
			if err != nil {
				return nil, err
			}
			if len(stored) > 0 {
				l.obs.CacheHit("store")
				l.ranges.Put(key, stored)
				return stored, nil
			}
		}
		l.obs.CacheMiss("store")
	}

	fetched, err := l.fetchRemote(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	stored, err := l.store.Read(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	// Stored rows win on date collisions so a flaky provider cannot
	// silently rewrite history. A forced refresh inverts that.
	merged := mergeSeries(stored, fetched)
	if refresh {
		merged = mergeSeries(fetched, stored)
	}

	if err := l.store.Write(ctx, symbol, merged); err != nil {
		return nil, err
	}

	window := merged.Slice(start, end)
	if len(window) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no rows for %s in [%s, %s]", symbol, core.DateKey(start), core.DateKey(end)))
	}
	l.ranges.Put(key, window)
	return window, nil
}

// fetchRemote walks the provider chain in order, retrying each provider
// on transient failures before falling through to the next.
func (l *Loader) fetchRemote(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	var lastErr error
	for _, p := range l.providers {
		r := provider.NewRetrier(p, l.policy, l.log)

		began := time.Now()
		out, err := r.FetchDaily(ctx, symbol, start, end)
		elapsed := time.Since(began)

		if err == nil {
			l.obs.ProviderFetch(p.Name(), "success", elapsed)
			l.log.Info("fetched prices",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Int("rows", len(out)),
			)
			return out, nil
		}

		l.obs.ProviderFetch(p.Name(), "failure", elapsed)
		l.log.Warn("provider exhausted, trying next",
			zap.String("provider", p.Name()),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, core.WrapError(core.ErrDataUnavailable, lastErr)
}

// mergeSeries unions two series by calendar date. Points from primary
// win on collisions; the result is sorted ascending.
func mergeSeries(primary, secondary core.Series) core.Series {
	seen := make(map[string]struct{}, len(primary))
	out := make(core.Series, 0, len(primary)+len(secondary))
	for _, p := range primary {
		k := core.DateKey(p.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	for _, p := range secondary {
		k := core.DateKey(p.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	out.SortByDate()
	return out
}
