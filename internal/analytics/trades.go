package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mkarlsen/pulse/internal/core"
)

// TradeStats holds aggregate statistics over a trade log.
type TradeStats struct {
	TotalTrades  int
	WinRate      float64 // percent of trades with positive pnl
	AvgWin       float64
	AvgLoss      float64 // negative
	ProfitFactor float64
	Expectancy   float64
	GrossProfit  float64
	GrossLoss    float64 // negative
	AvgTradePnL  float64
	StdDevPnL    float64
}

// TradeMetrics computes aggregate trade statistics. An empty log yields
// the zero-valued result, never an error.
func TradeMetrics(trades []core.Trade) TradeStats {
	if len(trades) == 0 {
		return TradeStats{}
	}

	pnl := make([]float64, 0, len(trades))
	var wins, losses []float64
	for _, t := range trades {
		if math.IsNaN(t.PnL) {
			continue
		}
		pnl = append(pnl, t.PnL)
		switch {
		case t.PnL > 0:
			wins = append(wins, t.PnL)
		case t.PnL < 0:
			losses = append(losses, t.PnL)
		}
	}
	if len(pnl) == 0 {
		return TradeStats{}
	}

	s := TradeStats{
		TotalTrades: len(pnl),
		WinRate:     float64(len(wins)) / float64(len(pnl)) * 100,
		Expectancy:  stat.Mean(pnl, nil),
	}
	s.AvgTradePnL = s.Expectancy

	if len(wins) > 0 {
		s.AvgWin = stat.Mean(wins, nil)
		for _, w := range wins {
			s.GrossProfit += w
		}
	}
	if len(losses) > 0 {
		s.AvgLoss = stat.Mean(losses, nil)
		for _, l := range losses {
			s.GrossLoss += l
		}
	}

	if s.GrossLoss == 0 {
		if s.GrossProfit > 0 {
			s.ProfitFactor = math.Inf(1)
		}
	} else {
		s.ProfitFactor = math.Abs(s.GrossProfit / s.GrossLoss)
	}

	if len(pnl) >= 2 {
		s.StdDevPnL = stat.StdDev(pnl, nil)
	}
	return s
}

// TradesFromRecords adapts a loosely typed record sequence (one map per
// trade, as decoded from JSON or CSV) into a trade log. Every record
// must carry a numeric "pnl" field; a missing or non-numeric field
// fails with ErrSchema.
func TradesFromRecords(records []map[string]any) ([]core.Trade, error) {
	trades := make([]core.Trade, 0, len(records))
	for i, rec := range records {
		raw, ok := rec["pnl"]
		if !ok {
			return nil, core.WrapError(core.ErrSchema,
				fmt.Errorf("record %d has no pnl field", i))
		}
		pnl, err := toFloat(raw)
		if err != nil {
			return nil, core.WrapError(core.ErrSchema,
				fmt.Errorf("record %d: %w", i, err))
		}
		trades = append(trades, core.Trade{PnL: pnl})
	}
	return trades, nil
}

// TradeMetricsFromRecords computes trade statistics straight from loose
// records.
func TradeMetricsFromRecords(records []map[string]any) (TradeStats, error) {
	trades, err := TradesFromRecords(records)
	if err != nil {
		return TradeStats{}, err
	}
	return TradeMetrics(trades), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("pnl is %T, want number", v)
	}
}

// AddTo merges the statistics into a summary mapping under their
// canonical metric names.
func (s TradeStats) AddTo(out core.Summary) {
	out["total_trades"] = float64(s.TotalTrades)
	out["win_rate"] = s.WinRate
	out["avg_win"] = s.AvgWin
	out["avg_loss"] = s.AvgLoss
	out["profit_factor"] = s.ProfitFactor
	out["expectancy"] = s.Expectancy
	out["gross_profit"] = s.GrossProfit
	out["gross_loss"] = s.GrossLoss
	out["avg_trade_pnl"] = s.AvgTradePnL
	out["std_dev_pnl"] = s.StdDevPnL
}
