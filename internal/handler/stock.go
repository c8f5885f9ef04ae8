package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/middleware"
	"github.com/kiwari-pos/backoffice/internal/service"
)

// StockServicer defines the stock movements that run in a transaction.
// Satisfied by *service.StockService.
type StockServicer interface {
	AdjustStock(ctx context.Context, req service.AdjustStockRequest) (database.StockAdjustment, error)
	RecordStockCount(ctx context.Context, req service.RecordStockCountRequest) (database.StockCount, error)
}

type StockStore interface {
	ListStockAdjustments(ctx context.Context, arg database.ListStockAdjustmentsParams) ([]database.ListStockAdjustmentsRow, error)
}

// StockHandler handles stock adjustments and physical counts.
type StockHandler struct {
	svc   StockServicer
	store StockStore
}

func NewStockHandler(svc StockServicer, store StockStore) *StockHandler {
	return &StockHandler{svc: svc, store: store}
}

// RegisterRoutes registers stock endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/stock
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/adjustments", h.ListAdjustments)
	r.Post("/adjustments", h.Adjust)
	r.Post("/counts", h.Count)
}

type stockAdjustmentRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	QuantityDelta   string `json:"quantity_delta"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

type stockCountRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	CountedQuantity string `json:"counted_quantity"`
	Notes           string `json:"notes"`
}

type stockAdjustmentResponse struct {
	ID              uuid.UUID `json:"id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	QuantityDelta   string    `json:"quantity_delta"`
	StockAfter      string    `json:"stock_after"`
	Reason          string    `json:"reason"`
	Notes           *string   `json:"notes"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type stockCountResponse struct {
	ID               uuid.UUID `json:"id"`
	InventoryItemID  uuid.UUID `json:"inventory_item_id"`
	ExpectedQuantity string    `json:"expected_quantity"`
	CountedQuantity  string    `json:"counted_quantity"`
	Variance         string    `json:"variance"`
	VariancePct      string    `json:"variance_pct"`
	Notes            *string   `json:"notes"`
	CountedBy        uuid.UUID `json:"counted_by"`
	CountedAt        time.Time `json:"counted_at"`
}

func toStockAdjustmentRow(a database.ListStockAdjustmentsRow) stockAdjustmentResponse {
	return stockAdjustmentResponse{
		ID:              a.ID,
		InventoryItemID: a.InventoryItemID,
		ItemName:        a.ItemName,
		Unit:            a.Unit,
		QuantityDelta:   database.FormatNumeric(a.QuantityDelta, 3),
		StockAfter:      database.FormatNumeric(a.StockAfter, 3),
		Reason:          a.Reason,
		Notes:           database.TextPtr(a.Notes),
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
	}
}

func stockErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInventoryItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNegativeStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrInvalidDelta),
		errors.Is(err, service.ErrInvalidCountValue):
		return http.StatusBadRequest
	}
	return 0
}

// ListAdjustments handles GET /branches/{bid}/stock/adjustments. Optional
// filters: inventory_item_id, search (item name).
func (h *StockHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	params := database.ListStockAdjustmentsParams{
		BranchID: branchID,
		Search:   database.Text(trimmed(r.URL.Query().Get("search"))),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	}
	if s := r.URL.Query().Get("inventory_item_id"); s != "" {
		itemID, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid inventory_item_id")
			return
		}
		params.InventoryItemID = pgtype.UUID{Bytes: itemID, Valid: true}
	}

	rows, err := h.store.ListStockAdjustments(r.Context(), params)
	if err != nil {
		internalError(w, r, "list stock adjustments", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(rows, p, toStockAdjustmentRow))
}

// Adjust handles POST /branches/{bid}/stock/adjustments.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req stockAdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inventory_item_id")
		return
	}

	adj, err := h.svc.AdjustStock(r.Context(), service.AdjustStockRequest{
		BranchID:        branchID,
		InventoryItemID: itemID,
		CreatedBy:       claims.UserID,
		Delta:           req.QuantityDelta,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		if status := stockErrorStatus(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		internalError(w, r, "adjust stock", err)
		return
	}

	writeJSON(w, http.StatusCreated, stockAdjustmentResponse{
		ID:              adj.ID,
		InventoryItemID: adj.InventoryItemID,
		QuantityDelta:   database.FormatNumeric(adj.QuantityDelta, 3),
		StockAfter:      database.FormatNumeric(adj.StockAfter, 3),
		Reason:          adj.Reason,
		Notes:           database.TextPtr(adj.Notes),
		CreatedBy:       adj.CreatedBy,
		CreatedAt:       adj.CreatedAt,
	})
}

// Count handles POST /branches/{bid}/stock/counts. The expected quantity is
// the stock level at the time of counting.
func (h *StockHandler) Count(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req stockCountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inventory_item_id")
		return
	}

	sc, err := h.svc.RecordStockCount(r.Context(), service.RecordStockCountRequest{
		BranchID:        branchID,
		InventoryItemID: itemID,
		CountedBy:       claims.UserID,
		Counted:         req.CountedQuantity,
		Notes:           req.Notes,
	})
	if err != nil {
		if status := stockErrorStatus(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		internalError(w, r, "record stock count", err)
		return
	}

	expected := database.ToDecimal(sc.ExpectedQuantity)
	counted := database.ToDecimal(sc.CountedQuantity)
	v, pct := service.Variance(expected, counted)
	writeJSON(w, http.StatusCreated, stockCountResponse{
		ID:               sc.ID,
		InventoryItemID:  sc.InventoryItemID,
		ExpectedQuantity: expected.StringFixed(3),
		CountedQuantity:  counted.StringFixed(3),
		Variance:         v.StringFixed(2),
		VariancePct:      pct.StringFixed(2),
		Notes:            database.TextPtr(sc.Notes),
		CountedBy:        sc.CountedBy,
		CountedAt:        sc.CountedAt,
	})
}
