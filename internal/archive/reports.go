// internal/archive/reports.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/cache"
	"github.com/mkarlsen/pulse/internal/core"
)

// Report is one archived performance summary.
type Report struct {
	Symbol      string         `json:"symbol"`
	GeneratedAt time.Time      `json:"generated_at"`
	Metrics     map[string]any `json:"metrics"`
}

// Reports persists performance summaries as JSON blobs under
// reports/<SYMBOL>/<timestamp>.json on any Storage backend.
type Reports struct {
	store  Storage
	log    *zap.Logger
	latest *cache.TTLCache

	// now is swapped in tests to control file naming.
	now func() time.Time
}

// NewReports creates a report archive over the given backend. When
// ttl > 0, Latest lookups are served from a per-day cache for that
// long before hitting the backend again.
func NewReports(store Storage, log *zap.Logger, ttl time.Duration) *Reports {
	r := &Reports{store: store, log: log, now: time.Now}
	if ttl > 0 {
		r.latest = cache.NewTTLCache(ttl)
	}
	return r
}

func reportPath(symbol string, ts time.Time) string {
	return fmt.Sprintf("reports/%s/%s.json",
		strings.ToUpper(strings.TrimSpace(symbol)),
		ts.UTC().Format("20060102T150405Z"))
}

// Save archives a summary for symbol and returns the storage path.
// Signed infinities survive the JSON round trip as the strings "inf"
// and "-inf".
func (r *Reports) Save(ctx context.Context, symbol string, summary core.Summary) (string, error) {
	rep := Report{
		Symbol:      strings.ToUpper(strings.TrimSpace(symbol)),
		GeneratedAt: r.now().UTC(),
		Metrics:     EncodeSummary(summary),
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := reportPath(symbol, rep.GeneratedAt)
	if err := r.store.Write(ctx, path, data); err != nil {
		return "", fmt.Errorf("archiving report: %w", err)
	}

	if r.latest != nil {
		r.latest.Put(cache.DayKey(rep.Symbol, rep.GeneratedAt), &rep)
	}

	r.log.Info("report archived",
		zap.String("symbol", rep.Symbol),
		zap.String("path", path),
	)
	return path, nil
}

// List returns the archived report paths for symbol, oldest first.
func (r *Reports) List(ctx context.Context, symbol string) ([]string, error) {
	prefix := "reports/" + strings.ToUpper(strings.TrimSpace(symbol))
	paths, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest loads the most recent archived report for symbol.
func (r *Reports) Latest(ctx context.Context, symbol string) (*Report, error) {
	var key string
	if r.latest != nil {
		key = cache.DayKey(symbol, r.now().UTC())
		if v, ok := r.latest.Get(key); ok {
			return v.(*Report), nil
		}
	}

	paths, err := r.List(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no archived reports for %s", symbol))
	}

	data, err := r.store.Read(ctx, paths[len(paths)-1])
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}

	if r.latest != nil {
		r.latest.Put(key, &rep)
	}
	return &rep, nil
}

// EncodeSummary maps metric values to JSON-safe ones: signed infinities
// become the strings "inf" and "-inf", everything else stays numeric.
func EncodeSummary(s core.Summary) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		switch {
		case math.IsInf(v, 1):
			out[k] = "inf"
		case math.IsInf(v, -1):
			out[k] = "-inf"
		default:
			out[k] = v
		}
	}
	return out
}

// DecodeSummary reverses EncodeSummary. Unknown value shapes are
// dropped.
func DecodeSummary(m map[string]any) core.Summary {
	out := make(core.Summary, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case float64:
			out[k] = t
		case string:
			switch t {
			case "inf":
				out[k] = math.Inf(1)
			case "-inf":
				out[k] = math.Inf(-1)
			}
		}
	}
	return out
}
