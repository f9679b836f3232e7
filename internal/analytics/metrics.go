// Package analytics computes performance statistics for equity curves
// and trade logs produced by strategy backtests.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mkarlsen/pulse/internal/core"
)

const (
	// TradingDaysPerYear is the default annualization base.
	TradingDaysPerYear = 252

	// DefaultRiskFree is the annualized risk-free rate used when none
	// is supplied.
	DefaultRiskFree = 0.0

	// zeroTol is the threshold below which an excess return counts as
	// zero when volatility vanishes.
	zeroTol = 1e-9
)

// DailyReturns computes percent changes between consecutive equity
// points. The first point has no return and is dropped. Fewer than two
// points yield an empty slice.
func DailyReturns(equity core.Series) []float64 {
	if len(equity) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}
		rets = append(rets, equity[i].Value/prev-1)
	}
	return rets
}

// CAGR computes the compound annual growth rate implied by the first
// and last equity values. Non-positive start values and series shorter
// than two points return 0.
func CAGR(equity core.Series, periodsPerYear int) float64 {
	if len(equity) < 2 {
		return 0
	}
	start := equity.First().Value
	end := equity.Last().Value
	if start <= 0 {
		return 0
	}
	years := float64(len(equity)-1) / float64(periodsPerYear)
	if years <= 0 {
		return 0
	}
	return math.Pow(end/start, 1/years) - 1
}

// MaxDrawdown returns the largest decline from a running peak as a
// fraction of that peak. The result is <= 0; a monotonically
// non-decreasing series returns 0.
func MaxDrawdown(equity core.Series) float64 {
	if len(equity) < 2 {
		return 0
	}
	peak := equity.First().Value
	var maxDD float64
	for _, p := range equity {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		dd := (p.Value - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// PeakToTroughAbs returns the largest absolute drop from a running peak
// in equity units. The result is <= 0.
func PeakToTroughAbs(equity core.Series) float64 {
	if len(equity) < 2 {
		return 0
	}
	peak := equity.First().Value
	var maxDrop float64
	for _, p := range equity {
		if p.Value > peak {
			peak = p.Value
		}
		if drop := p.Value - peak; drop < maxDrop {
			maxDrop = drop
		}
	}
	return maxDrop
}

// AnnualizedVolatility computes the sample standard deviation of daily
// returns scaled to a yearly horizon. Fewer than two returns yield 0.
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(float64(periodsPerYear))
}

// SharpeRatio computes the annualized Sharpe ratio of the equity curve.
// With zero volatility the result is 0 for a negligible excess return
// and signed infinity otherwise.
func SharpeRatio(equity core.Series, rf float64, periodsPerYear int) float64 {
	rets := DailyReturns(equity)
	if len(rets) == 0 {
		return 0
	}

	target := rf / float64(periodsPerYear)
	excess := make([]float64, len(rets))
	for i, r := range rets {
		excess[i] = r - target
	}

	mean := stat.Mean(excess, nil)
	sd := 0.0
	if len(excess) >= 2 {
		sd = stat.StdDev(excess, nil)
	}

	if sd == 0 || math.IsNaN(sd) {
		if math.Abs(mean) < zeroTol {
			return 0
		}
		return math.Inf(sign(mean))
	}
	return mean / sd * math.Sqrt(float64(periodsPerYear))
}

// SortinoRatio computes the annualized Sortino ratio: like Sharpe but
// the denominator is the root-mean-square of returns below the
// per-period target only.
func SortinoRatio(equity core.Series, rf float64, periodsPerYear int) float64 {
	rets := DailyReturns(equity)
	if len(rets) == 0 {
		return 0
	}

	target := rf / float64(periodsPerYear)
	var sumExcess, sumSqDown float64
	var downside int
	for _, r := range rets {
		e := r - target
		sumExcess += e
		if e < 0 {
			sumSqDown += e * e
			downside++
		}
	}
	mean := sumExcess / float64(len(rets))

	if downside == 0 {
		if mean <= zeroTol {
			return 0
		}
		return math.Inf(1)
	}

	dd := math.Sqrt(sumSqDown / float64(downside))
	if dd == 0 {
		if mean <= zeroTol {
			return 0
		}
		return math.Inf(1)
	}
	return mean / dd * math.Sqrt(float64(periodsPerYear))
}

// CalmarRatio computes CAGR divided by the absolute maximum drawdown.
// A zero drawdown yields 0 for a negligible CAGR and signed infinity
// otherwise.
func CalmarRatio(equity core.Series, periodsPerYear int) float64 {
	growth := CAGR(equity, periodsPerYear)
	dd := MaxDrawdown(equity)
	if dd == 0 {
		if math.Abs(growth) < zeroTol {
			return 0
		}
		return math.Inf(sign(growth))
	}
	return growth / math.Abs(dd)
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}
