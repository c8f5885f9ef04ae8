package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/handler"
)

type mockVarianceStore struct {
	rows   []database.ListStockCountsForVarianceRow
	sums   database.SumStockCountsRow
	diff   int64
	err    error
	period database.SumStockCountsParams
}

func (m *mockVarianceStore) ListStockCountsForVariance(_ context.Context, arg database.ListStockCountsForVarianceParams) ([]database.ListStockCountsForVarianceRow, error) {
	return paginate(m.rows, arg.Limit, arg.Offset), m.err
}

func (m *mockVarianceStore) SumStockCounts(_ context.Context, arg database.SumStockCountsParams) (database.SumStockCountsRow, error) {
	m.period = arg
	return m.sums, nil
}

func (m *mockVarianceStore) CountStockCountsWithVariance(context.Context, database.SumStockCountsParams) (int64, error) {
	return m.diff, nil
}

func setupReportsRouter(store *mockVarianceStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/branches/{bid}/reports", handler.NewReportsHandler(store).RegisterRoutes)
	return r
}

func TestStockVarianceReport(t *testing.T) {
	store := &mockVarianceStore{
		rows: []database.ListStockCountsForVarianceRow{
			{ID: uuid.New(), ItemName: "Beras", Unit: "kg",
				ExpectedQuantity: database.Numeric(mustDecimal("50")), CountedQuantity: database.Numeric(mustDecimal("48"))},
			{ID: uuid.New(), ItemName: "Garam", Unit: "kg",
				ExpectedQuantity: database.Numeric(mustDecimal("0")), CountedQuantity: database.Numeric(mustDecimal("1"))},
		},
		sums: database.SumStockCountsRow{CountTotal: 2,
			TotalExpected: database.Numeric(mustDecimal("50")), TotalCounted: database.Numeric(mustDecimal("49"))},
		diff: 2,
	}
	branchID := uuid.New()

	rr := doRequest(t, setupReportsRouter(store), "GET",
		"/branches/"+branchID.String()+"/reports/stock-variance?start_date=2026-03-01&end_date=2026-03-31", nil)
	expectStatus(t, rr, http.StatusOK)

	if !store.period.StartDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!store.period.EndDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("period: %v .. %v", store.period.StartDate, store.period.EndDate)
	}

	resp := decodeResponse(t, rr)
	if resp["end_date"] != "2026-03-31" || resp["page"] != float64(1) {
		t.Errorf("envelope: %v", resp)
	}
	data := resp["data"].([]interface{})
	first := data[0].(map[string]interface{})
	if first["variance"] != "-2.00" || first["variance_pct"] != "-4.00" {
		t.Errorf("line 0: %v", first)
	}
	if second := data[1].(map[string]interface{}); second["variance_pct"] != "0.00" {
		t.Errorf("zero expected must give 0%%, got %v", second["variance_pct"])
	}
	totals := resp["totals"].(map[string]interface{})
	if totals["variance_pct"] != "-2.00" || totals["with_variance"] != float64(2) {
		t.Errorf("totals: %v", totals)
	}
}

func TestStockVarianceReport_BadInput(t *testing.T) {
	router := setupReportsRouter(&mockVarianceStore{})
	base := "/branches/" + uuid.New().String() + "/reports/stock-variance"

	expectStatus(t, doRequest(t, router, "GET", base+"?start_date=2026/03/01", nil), http.StatusBadRequest)
	expectStatus(t, doRequest(t, router, "GET", base+"?start_date=2026-04-01&end_date=2026-03-01", nil), http.StatusBadRequest)
	expectStatus(t, doRequest(t, router, "GET", "/branches/x/reports/stock-variance", nil), http.StatusBadRequest)
}

func TestStockVarianceReport_StoreError(t *testing.T) {
	router := setupReportsRouter(&mockVarianceStore{err: errors.New("db down")})
	rr := doRequest(t, router, "GET", "/branches/"+uuid.New().String()+"/reports/stock-variance", nil)
	expectStatus(t, rr, http.StatusInternalServerError)
}
