package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/database"
)

// InventoryStore defines the database methods needed by inventory handlers.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context, arg database.ListInventoryItemsParams) ([]database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
}

// InventoryHandler handles stock item endpoints. Stock levels are read-only
// here; they change through goods receipts and stock adjustments.
type InventoryHandler struct {
	store InventoryStore
}

func NewInventoryHandler(store InventoryStore) *InventoryHandler {
	return &InventoryHandler{store: store}
}

// RegisterRoutes registers inventory endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/inventory
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
}

type inventoryItemRequest struct {
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	ReorderLevel string `json:"reorder_level"`
}

type inventoryItemResponse struct {
	ID           uuid.UUID `json:"id"`
	BranchID     uuid.UUID `json:"branch_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	CurrentStock string    `json:"current_stock"`
	ReorderLevel string    `json:"reorder_level"`
	LowStock     bool      `json:"low_stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toInventoryItemResponse(it database.InventoryItem) inventoryItemResponse {
	stock := database.ToDecimal(it.CurrentStock)
	reorder := database.ToDecimal(it.ReorderLevel)
	return inventoryItemResponse{
		ID:           it.ID,
		BranchID:     it.BranchID,
		Name:         it.Name,
		Unit:         it.Unit,
		CurrentStock: stock.StringFixed(3),
		ReorderLevel: reorder.StringFixed(3),
		LowStock:     stock.LessThanOrEqual(reorder),
		UpdatedAt:    it.UpdatedAt,
	}
}

// validate checks the request and returns the parsed reorder level. An empty
// reorder level means zero.
func (req *inventoryItemRequest) validate() (decimal.Decimal, string) {
	req.Name = trimmed(req.Name)
	req.Unit = trimmed(req.Unit)
	if req.Name == "" {
		return decimal.Zero, "name is required"
	}
	if req.Unit == "" {
		return decimal.Zero, "unit is required"
	}
	if req.ReorderLevel == "" {
		return decimal.Zero, ""
	}
	level, err := decimal.NewFromString(req.ReorderLevel)
	if err != nil || level.IsNegative() {
		return decimal.Zero, "reorder_level must be a number >= 0"
	}
	return level, ""
}

// List handles GET /branches/{bid}/inventory. low_stock=true keeps items at
// or below their reorder level.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	items, err := h.store.ListInventoryItems(r.Context(), database.ListInventoryItemsParams{
		BranchID: branchID,
		LowStock: r.URL.Query().Get("low_stock") == "true",
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list inventory items", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(items, p, toInventoryItemResponse))
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "inventory item")
	if !ok {
		return
	}

	item, err := h.store.GetInventoryItem(r.Context(), database.GetInventoryItemParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "inventory item not found")
			return
		}
		internalError(w, r, "get inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	var req inventoryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	level, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.store.CreateInventoryItem(r.Context(), database.CreateInventoryItemParams{
		BranchID:     branchID,
		Name:         req.Name,
		Unit:         req.Unit,
		ReorderLevel: database.Numeric(level),
	})
	if err != nil {
		internalError(w, r, "create inventory item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryItemResponse(item))
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "inventory item")
	if !ok {
		return
	}
	var req inventoryItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	level, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.store.UpdateInventoryItem(r.Context(), database.UpdateInventoryItemParams{
		ID:           id,
		BranchID:     branchID,
		Name:         req.Name,
		Unit:         req.Unit,
		ReorderLevel: database.Numeric(level),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "inventory item not found")
			return
		}
		internalError(w, r, "update inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}
