// Package series normalizes arbitrary equity or return input into a
// clean ordered numeric sequence before any metric logic runs.
package series

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

// Labeled is one entry of a time-indexed input sequence. Value may be a
// float, an integer, or a numeric string; non-coercible values fail
// validation.
type Labeled struct {
	Date  time.Time
	Value any
}

// Validate normalizes input into a fresh core.Series. Accepted shapes:
// core.Series, []core.PricePoint, []float64, []Labeled, and []any of
// numeric-coercible values. Entries whose value is NaN are dropped
// without interpolation; relative order is preserved. Unsupported
// shapes return ErrInvalidType, coercion failures ErrInvalidData, and
// inputs with zero surviving entries ErrEmptyData.
func Validate(input any) (core.Series, error) {
	var out core.Series

	switch v := input.(type) {
	case core.Series:
		out = fromPoints(v)
	case []core.PricePoint:
		out = fromPoints(v)
	case []float64:
		out = make(core.Series, 0, len(v))
		for i, f := range v {
			if math.IsNaN(f) {
				continue
			}
			out = append(out, core.PricePoint{Date: ordinalDate(i), Value: f})
		}
	case []Labeled:
		out = make(core.Series, 0, len(v))
		for _, l := range v {
			if l.Value == nil {
				continue
			}
			f, err := coerce(l.Value)
			if err != nil {
				return nil, core.WrapError(core.ErrInvalidData, err)
			}
			if math.IsNaN(f) {
				continue
			}
			out = append(out, core.PricePoint{Date: l.Date, Value: f})
		}
	case []any:
		out = make(core.Series, 0, len(v))
		for i, raw := range v {
			if raw == nil {
				continue
			}
			f, err := coerce(raw)
			if err != nil {
				return nil, core.WrapError(core.ErrInvalidData, err)
			}
			if math.IsNaN(f) {
				continue
			}
			out = append(out, core.PricePoint{Date: ordinalDate(i), Value: f})
		}
	default:
		return nil, core.WrapError(core.ErrInvalidType, fmt.Errorf("got %T", input))
	}

	if len(out) == 0 {
		return nil, core.ErrEmptyData
	}
	return out, nil
}

func fromPoints(pts []core.PricePoint) core.Series {
	out := make(core.Series, 0, len(pts))
	for _, p := range pts {
		if math.IsNaN(p.Value) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ordinalDate gives unlabeled entries a synthetic increasing date so the
// result still satisfies the ordered-series invariant.
func ordinalDate(i int) time.Time {
	return time.Unix(0, 0).UTC().AddDate(0, 0, i)
}

func coerce(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to number", v)
	}
}
