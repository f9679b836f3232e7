// internal/api/handler/prices.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mkarlsen/pulse/internal/api/response"
	"github.com/mkarlsen/pulse/internal/core"
)

// PriceSource defines the interface needed from loader.Loader.
type PriceSource interface {
	GetPrices(ctx context.Context, symbol string, start, end time.Time, refresh bool) (core.Series, error)
}

// PricesHandler handles price window API requests.
type PricesHandler struct {
	prices PriceSource
}

// NewPricesHandler creates a new prices handler.
func NewPricesHandler(prices PriceSource) *PricesHandler {
	return &PricesHandler{prices: prices}
}

type pricePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Get returns the daily series for ?symbol=&start=&end=. Passing
// refresh=true bypasses the local tiers.
func (h *PricesHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	start, err := core.ParseDate(q.Get("start"))
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	end, err := core.ParseDate(q.Get("end"))
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	refresh := q.Get("refresh") == "true"

	series, err := h.prices.GetPrices(r.Context(), symbol, start, end, refresh)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	points := make([]pricePoint, len(series))
	for i, p := range series {
		points[i] = pricePoint{Date: core.DateKey(p.Date), Value: p.Value}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"count":  len(points),
		"prices": points,
	})
}
