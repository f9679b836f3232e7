package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo fetches daily prices from the Yahoo Finance chart API. It is
// the fallback provider; its richer table carries an adjusted close.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// NewYahoo creates a Yahoo provider.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: yahooBaseURL,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// FetchDaily fetches the chart JSON over [start, end]. The upstream API
// treats the upper bound as exclusive, so the window is extended by one
// day. Null entries in the nullable value arrays are skipped.
func (y *Yahoo) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d&events=div%%2Csplit",
		y.baseURL, symbol, start.Unix(), end.AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building yahoo request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.MarkTransient(fmt.Errorf("fetching from yahoo: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, core.MarkTransient(fmt.Errorf("yahoo status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo status %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding yahoo response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no chart data for %s", symbol))
	}

	r := result.Chart.Result[0]

	// Prefer adjusted close when present, fall back to raw close.
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}
	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	var out core.Series
	for i, ts := range r.Timestamp {
		var v *float64
		if i < len(adj) && adj[i] != nil {
			v = adj[i]
		} else if i < len(closes) && closes[i] != nil {
			v = closes[i]
		}
		if v == nil {
			continue
		}
		d := time.Unix(int64(ts), 0).UTC().Truncate(24 * time.Hour)
		out = append(out, core.PricePoint{Date: d, Value: *v})
	}

	if len(out) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("yahoo returned no usable rows for %s", symbol))
	}
	return out, nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote    []quoteIndicator    `json:"quote"`
	AdjClose []adjCloseIndicator `json:"adjclose"`
}

type quoteIndicator struct {
	Close []*float64 `json:"close"`
}

type adjCloseIndicator struct {
	AdjClose []*float64 `json:"adjclose"`
}
