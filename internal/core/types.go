package core

import (
	"errors"
	"sort"
	"time"
)

// DateLayout is the canonical calendar-date format used across stores
// and providers.
const DateLayout = "2006-01-02"

// PricePoint is one (date, value) observation of a daily series.
type PricePoint struct {
	Date  time.Time
	Value float64
}

// Series is an ordered sequence of daily observations. After validation
// dates are strictly increasing and values contain no NaN.
type Series []PricePoint

// Values returns the values of the series as a plain slice.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// First returns the first point. Callers must check len(s) > 0.
func (s Series) First() PricePoint {
	return s[0]
}

// Last returns the last point. Callers must check len(s) > 0.
func (s Series) Last() PricePoint {
	return s[len(s)-1]
}

// Slice returns the sub-series with dates inside [start, end] inclusive.
func (s Series) Slice(start, end time.Time) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortByDate sorts the series in place by ascending date.
func (s Series) SortByDate() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Trade is one closed or open trade from a strategy's trade log. Only
// PnL is required for aggregate statistics; Open/Close are informational.
type Trade struct {
	PnL   float64    `json:"pnl"`
	Open  *time.Time `json:"open,omitempty"`
	Close *time.Time `json:"close,omitempty"`
}

// Summary maps metric names to scalar results. It is produced fresh per
// computation and never mutated afterwards.
type Summary map[string]float64

// IsTransient reports whether err (or anything it wraps) was marked
// retryable by a provider.
func IsTransient(err error) bool {
	var t *Transient
	return errors.As(err, &t)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateKey formats t as a YYYY-MM-DD calendar date in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
