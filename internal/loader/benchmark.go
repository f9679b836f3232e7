package loader

import (
	"context"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

// BenchmarkEquity loads the benchmark symbol's prices over [start, end]
// and rescales them into an equity curve starting at capital, so a
// strategy's curve can be compared against buy-and-hold on the same
// axis.
func (l *Loader) BenchmarkEquity(ctx context.Context, symbol string, start, end time.Time, capital float64) (core.Series, error) {
	prices, err := l.GetPrices(ctx, symbol, start, end, false)
	if err != nil {
		return nil, err
	}
	base := prices.First().Value
	if base == 0 {
		return nil, core.WrapError(core.ErrInvalidData, nil)
	}

	out := make(core.Series, len(prices))
	for i, p := range prices {
		out[i] = core.PricePoint{Date: p.Date, Value: capital * p.Value / base}
	}
	return out, nil
}
