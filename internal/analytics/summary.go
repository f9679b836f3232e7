package analytics

import (
	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/core"
	"github.com/mkarlsen/pulse/internal/series"
)

// equityKeys are the summary entries zeroed out when the equity series
// cannot be validated.
var equityKeys = []string{
	"start_value", "end_value", "total_return_abs", "total_return_pct",
	"cagr", "annualized_volatility", "sharpe", "sortino", "calmar",
	"max_drawdown_pct", "max_drawdown_abs",
}

// Engine composes the individual metric functions into consolidated
// performance summaries.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a metrics engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Summary produces a consolidated mapping of equity and trade metrics.
// An invalid or empty equity input degrades to zeroed equity metrics
// rather than an error, so reporting paths always get a usable mapping.
// The input may be any shape series.Validate accepts.
func (e *Engine) Summary(equity any, trades []core.Trade, rf float64, periodsPerYear int) core.Summary {
	out := make(core.Summary, len(equityKeys)+10)

	eq, err := series.Validate(equity)
	if err != nil {
		e.log.Warn("equity series invalid, zeroing equity metrics", zap.Error(err))
		for _, k := range equityKeys {
			out[k] = 0
		}
	} else {
		start := eq.First().Value
		end := eq.Last().Value
		rets := DailyReturns(eq)

		out["start_value"] = start
		out["end_value"] = end
		out["total_return_abs"] = end - start
		if start != 0 {
			out["total_return_pct"] = (end/start - 1) * 100
		} else {
			out["total_return_pct"] = 0
		}
		out["cagr"] = CAGR(eq, periodsPerYear)
		out["annualized_volatility"] = AnnualizedVolatility(rets, periodsPerYear)
		out["sharpe"] = SharpeRatio(eq, rf, periodsPerYear)
		out["sortino"] = SortinoRatio(eq, rf, periodsPerYear)
		out["calmar"] = CalmarRatio(eq, periodsPerYear)
		out["max_drawdown_pct"] = MaxDrawdown(eq)
		out["max_drawdown_abs"] = PeakToTroughAbs(eq)
	}

	TradeMetrics(trades).AddTo(out)
	return out
}
