package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
	"github.com/kiwari-pos/backoffice/internal/middleware"
	"github.com/kiwari-pos/backoffice/internal/service"
)

// PurchaseServicer defines the purchasing operations that run in a
// transaction. Satisfied by *service.PurchaseService.
type PurchaseServicer interface {
	CreatePurchaseOrder(ctx context.Context, req service.CreatePurchaseOrderRequest) (*service.PurchaseOrderResult, error)
	SubmitPurchaseOrder(ctx context.Context, branchID, id uuid.UUID) (database.PurchaseOrder, error)
	CancelPurchaseOrder(ctx context.Context, branchID, id uuid.UUID) (database.PurchaseOrder, error)
	ReceiveGoods(ctx context.Context, req service.ReceiveGoodsRequest) (*service.GoodsReceiptResult, error)
}

// PurchaseStore defines the read queries behind purchase order and goods
// receipt endpoints.
type PurchaseStore interface {
	ListPurchaseOrders(ctx context.Context, arg database.ListPurchaseOrdersParams) ([]database.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, arg database.GetPurchaseOrderParams) (database.PurchaseOrder, error)
	ListPurchaseOrderLines(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderLine, error)
	ListGoodsReceipts(ctx context.Context, arg database.ListGoodsReceiptsParams) ([]database.GoodsReceipt, error)
	GetGoodsReceipt(ctx context.Context, arg database.GetGoodsReceiptParams) (database.GoodsReceipt, error)
	ListGoodsReceiptLines(ctx context.Context, goodsReceiptID uuid.UUID) ([]database.GoodsReceiptLine, error)
}

// PurchaseHandler handles purchase orders and goods received notes.
type PurchaseHandler struct {
	svc   PurchaseServicer
	store PurchaseStore
}

func NewPurchaseHandler(svc PurchaseServicer, store PurchaseStore) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, store: store}
}

// RegisterRoutes registers purchase order endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/purchase-orders
func (h *PurchaseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/receive", h.Receive)
}

// RegisterReceiptRoutes registers goods receipt endpoints.
// Expected to be mounted at /branches/{bid}/goods-receipts
func (h *PurchaseHandler) RegisterReceiptRoutes(r chi.Router) {
	r.Get("/", h.ListReceipts)
	r.Get("/{id}", h.GetReceipt)
}

// --- Request / Response types ---

type createPurchaseOrderRequest struct {
	SupplierName   string                     `json:"supplier_name"`
	Notes          string                     `json:"notes"`
	ExpectedDate   string                     `json:"expected_date"`
	DiscountAmount string                     `json:"discount_amount"`
	TaxAmount      string                     `json:"tax_amount"`
	Lines          []purchaseOrderLineRequest `json:"lines"`
}

type purchaseOrderLineRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        string `json:"quantity"`
	UnitCost        string `json:"unit_cost"`
}

type receiveGoodsRequest struct {
	Notes string               `json:"notes"`
	Lines []receiveLineRequest `json:"lines"`
}

type receiveLineRequest struct {
	PurchaseOrderLineID string `json:"purchase_order_line_id"`
	Quantity            string `json:"quantity"`
}

type purchaseOrderResponse struct {
	ID             uuid.UUID                   `json:"id"`
	BranchID       uuid.UUID                   `json:"branch_id"`
	PoNumber       string                      `json:"po_number"`
	SupplierName   string                      `json:"supplier_name"`
	Status         string                      `json:"status"`
	Subtotal       string                      `json:"subtotal"`
	DiscountAmount string                      `json:"discount_amount"`
	TaxAmount      string                      `json:"tax_amount"`
	NetCost        string                      `json:"net_cost"`
	Notes          *string                     `json:"notes"`
	ExpectedDate   *string                     `json:"expected_date"`
	CreatedBy      uuid.UUID                   `json:"created_by"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	Lines          []purchaseOrderLineResponse `json:"lines,omitempty"`
}

type purchaseOrderLineResponse struct {
	ID               uuid.UUID `json:"id"`
	InventoryItemID  uuid.UUID `json:"inventory_item_id"`
	Quantity         string    `json:"quantity"`
	UnitCost         string    `json:"unit_cost"`
	LineTotal        string    `json:"line_total"`
	ReceivedQuantity string    `json:"received_quantity"`
}

type goodsReceiptResponse struct {
	ID              uuid.UUID                  `json:"id"`
	BranchID        uuid.UUID                  `json:"branch_id"`
	GrnNumber       string                     `json:"grn_number"`
	PurchaseOrderID uuid.UUID                  `json:"purchase_order_id"`
	Notes           *string                    `json:"notes"`
	ReceivedBy      uuid.UUID                  `json:"received_by"`
	ReceivedAt      time.Time                  `json:"received_at"`
	Lines           []goodsReceiptLineResponse `json:"lines,omitempty"`
	// Set only on the receive response.
	PurchaseOrderStatus string `json:"purchase_order_status,omitempty"`
}

type goodsReceiptLineResponse struct {
	ID                  uuid.UUID `json:"id"`
	PurchaseOrderLineID uuid.UUID `json:"purchase_order_line_id"`
	InventoryItemID     uuid.UUID `json:"inventory_item_id"`
	Quantity            string    `json:"quantity"`
}

func toPurchaseOrderResponse(po database.PurchaseOrder) purchaseOrderResponse {
	resp := purchaseOrderResponse{
		ID:             po.ID,
		BranchID:       po.BranchID,
		PoNumber:       po.PoNumber,
		SupplierName:   po.SupplierName,
		Status:         po.Status,
		Subtotal:       database.FormatNumeric(po.Subtotal, 2),
		DiscountAmount: database.FormatNumeric(po.DiscountAmount, 2),
		TaxAmount:      database.FormatNumeric(po.TaxAmount, 2),
		NetCost:        database.FormatNumeric(po.NetCost, 2),
		Notes:          database.TextPtr(po.Notes),
		CreatedBy:      po.CreatedBy,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
	}
	if po.ExpectedDate.Valid {
		s := po.ExpectedDate.Time.Format("2006-01-02")
		resp.ExpectedDate = &s
	}
	return resp
}

func toPurchaseOrderDetail(po database.PurchaseOrder, lines []database.PurchaseOrderLine) purchaseOrderResponse {
	resp := toPurchaseOrderResponse(po)
	resp.Lines = make([]purchaseOrderLineResponse, len(lines))
	for i, l := range lines {
		resp.Lines[i] = purchaseOrderLineResponse{
			ID:               l.ID,
			InventoryItemID:  l.InventoryItemID,
			Quantity:         database.FormatNumeric(l.Quantity, 3),
			UnitCost:         database.FormatNumeric(l.UnitCost, 2),
			LineTotal:        database.FormatNumeric(l.LineTotal, 2),
			ReceivedQuantity: database.FormatNumeric(l.ReceivedQuantity, 3),
		}
	}
	return resp
}

func toGoodsReceiptResponse(g database.GoodsReceipt) goodsReceiptResponse {
	return goodsReceiptResponse{
		ID:              g.ID,
		BranchID:        g.BranchID,
		GrnNumber:       g.GrnNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		Notes:           database.TextPtr(g.Notes),
		ReceivedBy:      g.ReceivedBy,
		ReceivedAt:      g.ReceivedAt,
	}
}

func toGoodsReceiptDetail(g database.GoodsReceipt, lines []database.GoodsReceiptLine) goodsReceiptResponse {
	resp := toGoodsReceiptResponse(g)
	resp.Lines = make([]goodsReceiptLineResponse, len(lines))
	for i, l := range lines {
		resp.Lines[i] = goodsReceiptLineResponse{
			ID:                  l.ID,
			PurchaseOrderLineID: l.PurchaseOrderLineID,
			InventoryItemID:     l.InventoryItemID,
			Quantity:            database.FormatNumeric(l.Quantity, 3),
		}
	}
	return resp
}

// purchaseErrorStatus maps purchasing service errors to HTTP status codes.
// Zero means the error is unexpected.
func purchaseErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPurchaseOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPurchaseOrderNotReceivable):
		return http.StatusConflict
	case errors.Is(err, service.ErrSupplierRequired),
		errors.Is(err, service.ErrEmptyLines),
		errors.Is(err, service.ErrInvalidInventoryItemID),
		errors.Is(err, service.ErrInventoryItemNotFound),
		errors.Is(err, service.ErrInvalidLineQuantity),
		errors.Is(err, service.ErrInvalidUnitCost),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrNegativeNetCost),
		errors.Is(err, service.ErrInvalidExpectedDate),
		errors.Is(err, service.ErrInvalidPOLineID),
		errors.Is(err, service.ErrUnknownPOLine),
		errors.Is(err, service.ErrOverReceipt):
		return http.StatusBadRequest
	}
	return 0
}

func writePurchaseError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status := purchaseErrorStatus(err); status != 0 {
		writeError(w, status, err.Error())
		return
	}
	internalError(w, r, op, err)
}

// --- Purchase order handlers ---

// List handles GET /branches/{bid}/purchase-orders. Optional filters: status,
// search (supplier or PO number).
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !enum.IsPurchaseOrderStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	pos, err := h.store.ListPurchaseOrders(r.Context(), database.ListPurchaseOrdersParams{
		BranchID: branchID,
		Status:   database.Text(status),
		Search:   database.Text(trimmed(q.Get("search"))),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list purchase orders", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(pos, p, toPurchaseOrderResponse))
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req createPurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]service.PurchaseOrderLineRequest, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.PurchaseOrderLineRequest{InventoryItemID: l.InventoryItemID, Quantity: l.Quantity, UnitCost: l.UnitCost}
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), service.CreatePurchaseOrderRequest{
		BranchID:       branchID,
		CreatedBy:      claims.UserID,
		SupplierName:   trimmed(req.SupplierName),
		Notes:          req.Notes,
		ExpectedDate:   req.ExpectedDate,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		Lines:          lines,
	})
	if err != nil {
		writePurchaseError(w, r, "create purchase order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseOrderDetail(result.PurchaseOrder, result.Lines))
}

// Get handles GET /branches/{bid}/purchase-orders/{id} and includes the lines.
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "purchase order")
	if !ok {
		return
	}

	po, err := h.store.GetPurchaseOrder(r.Context(), database.GetPurchaseOrderParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "purchase order not found")
			return
		}
		internalError(w, r, "get purchase order", err)
		return
	}
	lines, err := h.store.ListPurchaseOrderLines(r.Context(), po.ID)
	if err != nil {
		internalError(w, r, "list purchase order lines", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderDetail(po, lines))
}

// Submit moves a DRAFT purchase order to ORDERED.
func (h *PurchaseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit purchase order", h.svc.SubmitPurchaseOrder)
}

// Cancel cancels a DRAFT or ORDERED purchase order.
func (h *PurchaseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel purchase order", h.svc.CancelPurchaseOrder)
}

func (h *PurchaseHandler) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, branchID, id uuid.UUID) (database.PurchaseOrder, error)) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "purchase order")
	if !ok {
		return
	}
	po, err := fn(r.Context(), branchID, id)
	if err != nil {
		writePurchaseError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderResponse(po))
}

// Receive handles POST /branches/{bid}/purchase-orders/{id}/receive.
func (h *PurchaseHandler) Receive(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "purchase order")
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req receiveGoodsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]service.ReceiveLineRequest, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.ReceiveLineRequest{PurchaseOrderLineID: l.PurchaseOrderLineID, Quantity: l.Quantity}
	}

	result, err := h.svc.ReceiveGoods(r.Context(), service.ReceiveGoodsRequest{
		BranchID:        branchID,
		PurchaseOrderID: id,
		ReceivedBy:      claims.UserID,
		Notes:           req.Notes,
		Lines:           lines,
	})
	if err != nil {
		writePurchaseError(w, r, "receive goods", err)
		return
	}

	resp := toGoodsReceiptDetail(result.Receipt, result.Lines)
	resp.PurchaseOrderStatus = result.PurchaseOrder.Status
	writeJSON(w, http.StatusCreated, resp)
}

// --- Goods receipt handlers ---

// ListReceipts handles GET /branches/{bid}/goods-receipts. Optional filter:
// purchase_order_id.
func (h *PurchaseHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	params := database.ListGoodsReceiptsParams{BranchID: branchID, Limit: p.Limit(), Offset: p.Offset()}
	if s := r.URL.Query().Get("purchase_order_id"); s != "" {
		poID, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid purchase_order_id")
			return
		}
		params.PurchaseOrderID = pgtype.UUID{Bytes: poID, Valid: true}
	}

	receipts, err := h.store.ListGoodsReceipts(r.Context(), params)
	if err != nil {
		internalError(w, r, "list goods receipts", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(receipts, p, toGoodsReceiptResponse))
}

func (h *PurchaseHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "goods receipt")
	if !ok {
		return
	}

	g, err := h.store.GetGoodsReceipt(r.Context(), database.GetGoodsReceiptParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "goods receipt not found")
			return
		}
		internalError(w, r, "get goods receipt", err)
		return
	}
	lines, err := h.store.ListGoodsReceiptLines(r.Context(), g.ID)
	if err != nil {
		internalError(w, r, "list goods receipt lines", err)
		return
	}
	writeJSON(w, http.StatusOK, toGoodsReceiptDetail(g, lines))
}
