// internal/api/handler/reports.go
package handler

import (
	"context"
	"net/http"

	"github.com/mkarlsen/pulse/internal/api/response"
	"github.com/mkarlsen/pulse/internal/archive"
	"github.com/mkarlsen/pulse/internal/core"
)

// ReportArchive defines the archive interface needed by the handler.
type ReportArchive interface {
	List(ctx context.Context, symbol string) ([]string, error)
	Latest(ctx context.Context, symbol string) (*archive.Report, error)
}

// ReportsHandler handles archived report API requests.
type ReportsHandler struct {
	reports ReportArchive
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports ReportArchive) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Get lists archived reports for ?symbol=. With latest=true the most
// recent report body is returned instead.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	if q.Get("latest") == "true" {
		rep, err := h.reports.Latest(r.Context(), symbol)
		if err != nil {
			response.Error(w, response.StatusFor(err), err)
			return
		}
		response.JSON(w, http.StatusOK, rep)
		return
	}

	paths, err := h.reports.List(r.Context(), symbol)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"count":   len(paths),
		"reports": paths,
	})
}
