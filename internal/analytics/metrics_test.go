package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

func equityOf(values ...float64) core.Series {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(core.Series, len(values))
	for i, v := range values {
		s[i] = core.PricePoint{Date: base.AddDate(0, 0, i), Value: v}
	}
	return s
}

func TestDailyReturns(t *testing.T) {
	rets := DailyReturns(equityOf(100, 110, 121))
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	for i, r := range rets {
		if math.Abs(r-0.10) > 1e-9 {
			t.Errorf("return %d = %f, want 0.10", i, r)
		}
	}
}

func TestDailyReturns_TooShort(t *testing.T) {
	if rets := DailyReturns(equityOf(100)); len(rets) != 0 {
		t.Errorf("expected empty returns, got %v", rets)
	}
	if rets := DailyReturns(nil); len(rets) != 0 {
		t.Errorf("expected empty returns for nil series, got %v", rets)
	}
}

func TestCAGR_ConstantSeries(t *testing.T) {
	if got := CAGR(equityOf(100, 100, 100, 100), TradingDaysPerYear); got != 0 {
		t.Errorf("CAGR of constant series = %f, want 0", got)
	}
}

func TestCAGR_Growth(t *testing.T) {
	// Doubling over exactly one year of periods.
	vals := make([]float64, TradingDaysPerYear+1)
	for i := range vals {
		vals[i] = 100 * math.Pow(2, float64(i)/float64(TradingDaysPerYear))
	}
	got := CAGR(equityOf(vals...), TradingDaysPerYear)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("CAGR = %f, want 1.0", got)
	}
}

func TestCAGR_NonPositiveStart(t *testing.T) {
	if got := CAGR(equityOf(0, 110), TradingDaysPerYear); got != 0 {
		t.Errorf("CAGR with zero start = %f, want 0", got)
	}
	if got := CAGR(equityOf(-5, 110), TradingDaysPerYear); got != 0 {
		t.Errorf("CAGR with negative start = %f, want 0", got)
	}
}

func TestMaxDrawdown_NeverPositive(t *testing.T) {
	cases := []core.Series{
		equityOf(100, 110, 121),
		equityOf(100, 90, 80, 120),
		equityOf(50, 50, 50),
		equityOf(100, 120, 60, 130, 70),
	}
	for _, eq := range cases {
		if dd := MaxDrawdown(eq); dd > 0 {
			t.Errorf("drawdown %f > 0 for %v", dd, eq.Values())
		}
	}
}

func TestMaxDrawdown_Value(t *testing.T) {
	// Peak 120, trough 60: -50%.
	dd := MaxDrawdown(equityOf(100, 120, 60, 110))
	if math.Abs(dd-(-0.5)) > 1e-9 {
		t.Errorf("drawdown = %f, want -0.5", dd)
	}
}

func TestMaxDrawdown_Monotonic(t *testing.T) {
	if dd := MaxDrawdown(equityOf(100, 105, 110, 110)); dd != 0 {
		t.Errorf("drawdown of non-decreasing series = %f, want 0", dd)
	}
}

func TestPeakToTroughAbs(t *testing.T) {
	drop := PeakToTroughAbs(equityOf(100, 120, 60, 110))
	if drop != -60 {
		t.Errorf("absolute drawdown = %f, want -60", drop)
	}
	if PeakToTroughAbs(equityOf(100)) != 0 {
		t.Error("single point series should have zero drawdown")
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	if v := AnnualizedVolatility(nil, TradingDaysPerYear); v != 0 {
		t.Errorf("volatility of empty returns = %f, want 0", v)
	}
	v := AnnualizedVolatility([]float64{0.01, -0.01, 0.02, -0.02}, TradingDaysPerYear)
	if v <= 0 {
		t.Errorf("volatility = %f, want > 0", v)
	}
}

func TestSharpeRatio_FlatSeries(t *testing.T) {
	// Zero variance, zero excess return: must be 0, not NaN or Inf.
	got := SharpeRatio(equityOf(100, 100, 100, 100), 0, TradingDaysPerYear)
	if got != 0 {
		t.Errorf("Sharpe of flat series = %f, want 0", got)
	}
}

func TestSharpeRatio_ZeroVarianceDrift(t *testing.T) {
	// Doubling each period gives exactly identical returns, so the
	// standard deviation is exactly zero: signed infinity.
	got := SharpeRatio(equityOf(100, 200, 400, 800), 0, TradingDaysPerYear)
	if !math.IsInf(got, 1) {
		t.Errorf("Sharpe with constant positive returns = %f, want +Inf", got)
	}
}

func TestSharpeRatio_Sign(t *testing.T) {
	up := SharpeRatio(equityOf(100, 101, 103, 104, 107, 108), 0, TradingDaysPerYear)
	if up <= 0 {
		t.Errorf("Sharpe of rising series = %f, want > 0", up)
	}
	down := SharpeRatio(equityOf(108, 107, 104, 103, 101, 100), 0, TradingDaysPerYear)
	if down >= 0 {
		t.Errorf("Sharpe of falling series = %f, want < 0", down)
	}
}

func TestSortinoRatio_NoDownside(t *testing.T) {
	got := SortinoRatio(equityOf(100, 110, 121), 0, TradingDaysPerYear)
	if !math.IsInf(got, 1) {
		t.Errorf("Sortino with no downside = %f, want +Inf", got)
	}
}

func TestSortinoRatio_FlatSeries(t *testing.T) {
	if got := SortinoRatio(equityOf(100, 100, 100), 0, TradingDaysPerYear); got != 0 {
		t.Errorf("Sortino of flat series = %f, want 0", got)
	}
}

func TestSortinoRatio_Mixed(t *testing.T) {
	got := SortinoRatio(equityOf(100, 105, 102, 108, 104, 111), 0, TradingDaysPerYear)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("Sortino = %f, want finite", got)
	}
	if got <= 0 {
		t.Errorf("Sortino of net-rising series = %f, want > 0", got)
	}
}

func TestCalmarRatio(t *testing.T) {
	if got := CalmarRatio(equityOf(100, 100, 100), TradingDaysPerYear); got != 0 {
		t.Errorf("Calmar of flat series = %f, want 0", got)
	}

	up := CalmarRatio(equityOf(100, 110, 121), TradingDaysPerYear)
	if !math.IsInf(up, 1) {
		t.Errorf("Calmar with zero drawdown and positive CAGR = %f, want +Inf", up)
	}

	mixed := CalmarRatio(equityOf(100, 120, 90, 130), TradingDaysPerYear)
	if math.IsInf(mixed, 0) || math.IsNaN(mixed) {
		t.Errorf("Calmar = %f, want finite", mixed)
	}
}
