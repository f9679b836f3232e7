package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

const stooqBaseURL = "https://stooq.com/q/d/l/"

// Stooq fetches daily prices from Stooq's CSV download endpoint. It is
// the primary provider: free, keyless, compact CSV with a Close column.
type Stooq struct {
	client  *http.Client
	baseURL string
}

// NewStooq creates a Stooq provider.
func NewStooq() *Stooq {
	return &Stooq{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: stooqBaseURL,
	}
}

func (s *Stooq) Name() string { return "stooq" }

// FetchDaily downloads and parses the CSV for symbol over [start, end].
// Network failures and 5xx responses are transient; an empty or
// malformed payload is not.
func (s *Stooq) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	sym := strings.ToLower(strings.TrimSpace(symbol))
	url := fmt.Sprintf("%s?s=%s.us&d1=%s&d2=%s&i=d",
		s.baseURL, sym, start.Format("20060102"), end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building stooq request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.MarkTransient(fmt.Errorf("fetching from stooq: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, core.MarkTransient(fmt.Errorf("stooq status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq status %d", resp.StatusCode)
	}

	return parseStooqCSV(resp.Body)
}

// parseStooqCSV normalizes the compact Date/Open/High/Low/Close/Volume
// CSV to the canonical (date, value) shape using the Close column.
func parseStooqCSV(r io.Reader) (core.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading stooq header: %w", err)
	}

	dateCol, closeCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Date":
			dateCol = i
		case "Close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("stooq payload missing Date/Close columns: %v", header)
	}

	var out core.Series
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading stooq row: %w", err)
		}
		if len(rec) <= dateCol || len(rec) <= closeCol {
			continue
		}
		d, err := core.ParseDate(rec[dateCol])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(rec[closeCol], 64)
		if err != nil {
			continue
		}
		out = append(out, core.PricePoint{Date: d, Value: v})
	}

	if len(out) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("stooq returned no rows"))
	}
	return out, nil
}
