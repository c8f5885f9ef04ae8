package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
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
	"github.com/kiwari-pos/backoffice/internal/ws"
)

// Order event types pushed to the branch websocket room.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// Broadcaster pushes events to every websocket client of a branch.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToBranch(branchID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler. hub may be nil.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType   string                   `json:"order_type"`
	TableNumber string                   `json:"table_number"`
	Notes       string                   `json:"notes"`
	Items       []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	BranchID    uuid.UUID           `json:"branch_id"`
	OrderNumber string              `json:"order_number"`
	OrderType   string              `json:"order_type"`
	Status      string              `json:"status"`
	TableNumber *string             `json:"table_number"`
	Notes       *string             `json:"notes"`
	TotalAmount string              `json:"total_amount"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	Subtotal   string    `json:"subtotal"`
	Station    *string   `json:"station"`
	Notes      *string   `json:"notes"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		BranchID:    o.BranchID,
		OrderNumber: o.OrderNumber,
		OrderType:   o.OrderType,
		Status:      o.Status,
		TableNumber: database.TextPtr(o.TableNumber),
		Notes:       database.TextPtr(o.Notes),
		TotalAmount: database.FormatNumeric(o.TotalAmount, 2),
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderDetail(o database.Order, items []database.OrderItem) orderResponse {
	resp := toOrderResponse(o)
	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  database.FormatNumeric(it.UnitPrice, 2),
			Subtotal:   database.FormatNumeric(it.Subtotal, 2),
			Station:    database.TextPtr(it.Station),
			Notes:      database.TextPtr(it.Notes),
		}
	}
	return resp
}

// --- Handlers ---

// Create handles POST /branches/{bid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Notes: it.Notes}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		BranchID:    branchID,
		CreatedBy:   claims.UserID,
		OrderType:   req.OrderType,
		TableNumber: trimmed(req.TableNumber),
		Notes:       req.Notes,
		Items:       items,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, r, "create order", err)
		return
	}

	resp := toOrderDetail(result.Order, result.Items)
	h.broadcast(branchID, EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /branches/{bid}/orders. Optional filters: status, type,
// start_date, end_date (YYYY-MM-DD, end inclusive).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	params := database.ListOrdersParams{
		BranchID: branchID,
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	}
	if s := q.Get("status"); s != "" {
		if !enum.IsOrderStatus(s) {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		params.Status = database.Text(s)
	}
	if s := q.Get("type"); s != "" {
		if !enum.IsOrderType(s) {
			writeError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
		params.OrderType = database.Text(s)
	}
	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, errBadDate("start_date").Error())
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, errBadDate("end_date").Error())
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: t.AddDate(0, 0, 1), Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		internalError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(orders, p, toOrderResponse))
}

// Get handles GET /branches/{bid}/orders/{id} and includes the order's items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	orderID, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, "get order", err)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		internalError(w, r, "list order items", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetail(order, items))
}

// UpdateStatus handles PATCH /branches/{bid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	orderID, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, "get order", err)
		return
	}

	if err := service.ValidateOrderTransition(current.Status, req.Status); err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusConflict, "cannot move order from "+current.Status+" to "+req.Status)
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:            orderID,
		BranchID:      branchID,
		Status:        req.Status,
		CurrentStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Someone else moved the order between our read and the update.
			writeError(w, http.StatusConflict, "order status changed, please retry")
			return
		}
		internalError(w, r, "update order status", err)
		return
	}

	resp := toOrderResponse(updated)
	h.broadcast(branchID, EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) broadcast(branchID uuid.UUID, eventType string, v interface{}) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal order event", "type", eventType, "err", err)
		return
	}
	h.hub.BroadcastToBranch(branchID, ws.Event{Type: eventType, Payload: payload})
}

// isValidationError reports whether err is a client input error from the
// order service.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrMenuItemUnavailable)
}
