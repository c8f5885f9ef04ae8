package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiwari-pos/backoffice/internal/service"
)

// ReportsHandler serves inventory reports.
type ReportsHandler struct {
	store service.VarianceStore
}

func NewReportsHandler(store service.VarianceStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers branch report endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stock-variance", h.StockVariance)
}

type varianceLineResponse struct {
	ID               uuid.UUID `json:"id"`
	InventoryItemID  uuid.UUID `json:"inventory_item_id"`
	ItemName         string    `json:"item_name"`
	Unit             string    `json:"unit"`
	ExpectedQuantity string    `json:"expected_quantity"`
	CountedQuantity  string    `json:"counted_quantity"`
	Variance         string    `json:"variance"`
	VariancePct      string    `json:"variance_pct"`
	Notes            *string   `json:"notes"`
	CountedAt        time.Time `json:"counted_at"`
}

type varianceTotalsResponse struct {
	Counts        int64  `json:"counts"`
	WithVariance  int64  `json:"with_variance"`
	TotalExpected string `json:"total_expected"`
	TotalCounted  string `json:"total_counted"`
	Variance      string `json:"variance"`
	VariancePct   string `json:"variance_pct"`
}

// varianceReportResponse is the paginated list envelope plus period totals.
type varianceReportResponse struct {
	listResponse[varianceLineResponse]
	StartDate string                 `json:"start_date"`
	EndDate   string                 `json:"end_date"`
	Totals    varianceTotalsResponse `json:"totals"`
}

func toVarianceLineResponse(l service.VarianceLine) varianceLineResponse {
	return varianceLineResponse{
		ID:               l.ID,
		InventoryItemID:  l.InventoryItemID,
		ItemName:         l.ItemName,
		Unit:             l.Unit,
		ExpectedQuantity: l.ExpectedQuantity.StringFixed(3),
		CountedQuantity:  l.CountedQuantity.StringFixed(3),
		Variance:         l.Variance.StringFixed(2),
		VariancePct:      l.VariancePct.StringFixed(2),
		Notes:            l.Notes,
		CountedAt:        l.CountedAt,
	}
}

// StockVariance handles GET /branches/{bid}/reports/stock-variance.
// Query params: start_date, end_date (YYYY-MM-DD, default last 30 days),
// page, page_size.
func (h *ReportsHandler) StockVariance(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	report, err := service.BuildVarianceReport(r.Context(), h.store, service.VarianceQuery{
		BranchID:  branchID,
		StartDate: start,
		EndDate:   end,
		Limit:     p.Limit(),
		Offset:    p.Offset(),
	})
	if err != nil {
		internalError(w, r, "stock variance report", err)
		return
	}

	t := report.Totals
	writeJSON(w, http.StatusOK, varianceReportResponse{
		listResponse: newListResponse(report.Lines, p, toVarianceLineResponse),
		StartDate:    start.Format("2006-01-02"),
		EndDate:      end.AddDate(0, 0, -1).Format("2006-01-02"),
		Totals: varianceTotalsResponse{
			Counts:        t.Counts,
			WithVariance:  t.WithVariance,
			TotalExpected: t.TotalExpected.StringFixed(3),
			TotalCounted:  t.TotalCounted.StringFixed(3),
			Variance:      t.Variance.StringFixed(2),
			VariancePct:   t.VariancePct.StringFixed(2),
		},
	})
}
