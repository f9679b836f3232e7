// internal/api/handler/summary.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mkarlsen/pulse/internal/analytics"
	"github.com/mkarlsen/pulse/internal/api/response"
	"github.com/mkarlsen/pulse/internal/archive"
	"github.com/mkarlsen/pulse/internal/core"
)

// SummaryRequest is the request body for computing a summary.
type SummaryRequest struct {
	Symbol         string           `json:"symbol,omitempty"`
	Equity         any              `json:"equity"`
	Trades         []map[string]any `json:"trades,omitempty"`
	RiskFree       *float64         `json:"risk_free,omitempty"`
	PeriodsPerYear *int             `json:"periods_per_year,omitempty"`
	Archive        bool             `json:"archive,omitempty"`
}

// ReportSaver defines the archive interface needed by the handler.
type ReportSaver interface {
	Save(ctx context.Context, symbol string, summary core.Summary) (string, error)
}

// SummaryRecorder counts computed summaries.
type SummaryRecorder interface {
	RecordSummary()
}

// SummaryHandler handles performance summary API requests.
type SummaryHandler struct {
	engine         *analytics.Engine
	reports        ReportSaver
	recorder       SummaryRecorder
	riskFree       float64
	periodsPerYear int
}

// NewSummaryHandler creates a new summary handler. reports and recorder
// may be nil.
func NewSummaryHandler(engine *analytics.Engine, reports ReportSaver, recorder SummaryRecorder, riskFree float64, periodsPerYear int) *SummaryHandler {
	return &SummaryHandler{
		engine:         engine,
		reports:        reports,
		recorder:       recorder,
		riskFree:       riskFree,
		periodsPerYear: periodsPerYear,
	}
}

// Compute computes a summary for the posted equity curve and trade log.
// Signed infinities appear in the response as "inf" and "-inf".
func (h *SummaryHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	rf := h.riskFree
	if req.RiskFree != nil {
		rf = *req.RiskFree
	}
	ppy := h.periodsPerYear
	if req.PeriodsPerYear != nil {
		ppy = *req.PeriodsPerYear
	}
	if ppy < 1 {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, nil))
		return
	}

	trades, err := analytics.TradesFromRecords(req.Trades)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	summary := h.engine.Summary(req.Equity, trades, rf, ppy)
	if h.recorder != nil {
		h.recorder.RecordSummary()
	}

	data := map[string]any{
		"metrics": archive.EncodeSummary(summary),
	}
	if req.Symbol != "" {
		data["symbol"] = req.Symbol
	}

	if req.Archive {
		if h.reports == nil || req.Symbol == "" {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigMissing, nil))
			return
		}
		path, err := h.reports.Save(r.Context(), req.Symbol, summary)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err)
			return
		}
		data["archived_to"] = path
	}

	response.JSON(w, http.StatusOK, data)
}
