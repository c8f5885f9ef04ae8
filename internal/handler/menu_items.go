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
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
)

// MenuItemStore defines the database methods needed by menu item handlers.
type MenuItemStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	GetCategory(ctx context.Context, arg database.GetCategoryParams) (database.Category, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error)
}

// MenuItemHandler handles menu item endpoints.
type MenuItemHandler struct {
	store MenuItemStore
}

func NewMenuItemHandler(store MenuItemStore) *MenuItemHandler {
	return &MenuItemHandler{store: store}
}

// RegisterRoutes registers menu item endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/menu-items
func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/availability", h.SetAvailability)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Station     string `json:"station"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	BranchID    uuid.UUID `json:"branch_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Station     *string   `json:"station"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		BranchID:    m.BranchID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: database.TextPtr(m.Description),
		Price:       database.FormatNumeric(m.Price, 2),
		Station:     database.TextPtr(m.Station),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// --- Handlers ---

// List returns one page of menu items. Optional filters: category_id, search.
func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	params := database.ListMenuItemsParams{
		BranchID: branchID,
		Search:   database.Text(trimmed(r.URL.Query().Get("search"))),
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	}
	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		params.CategoryID = pgtype.UUID{Bytes: id, Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), params)
	if err != nil {
		internalError(w, r, "list menu items", err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(items, p, toMenuItemResponse))
}

func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "menu item")
	if !ok {
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		internalError(w, r, "get menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

type validMenuItem struct {
	categoryID uuid.UUID
	price      decimal.Decimal
}

// validate checks the request and that the category belongs to the branch.
// It writes the error response itself and reports whether to continue.
func (h *MenuItemHandler) validate(w http.ResponseWriter, r *http.Request, branchID uuid.UUID, req *menuItemRequest) (validMenuItem, bool) {
	req.Name = trimmed(req.Name)
	if req.Name == "" || req.CategoryID == "" || req.Price == "" {
		writeError(w, http.StatusBadRequest, "name, category_id, and price are required")
		return validMenuItem{}, false
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return validMenuItem{}, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be a number >= 0")
		return validMenuItem{}, false
	}
	if req.Station != "" && !enum.IsStation(req.Station) {
		writeError(w, http.StatusBadRequest, "invalid station")
		return validMenuItem{}, false
	}

	if _, err := h.store.GetCategory(r.Context(), database.GetCategoryParams{ID: categoryID, BranchID: branchID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "category not found in branch")
			return validMenuItem{}, false
		}
		internalError(w, r, "get category", err)
		return validMenuItem{}, false
	}
	return validMenuItem{categoryID: categoryID, price: price}, true
}

func (h *MenuItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	var req menuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, ok := h.validate(w, r, branchID, &req)
	if !ok {
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		BranchID:    branchID,
		CategoryID:  v.categoryID,
		Name:        req.Name,
		Description: database.Text(req.Description),
		Price:       database.Numeric(v.price),
		Station:     database.Text(req.Station),
	})
	if err != nil {
		internalError(w, r, "create menu item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "menu item")
	if !ok {
		return
	}
	var req menuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, ok := h.validate(w, r, branchID, &req)
	if !ok {
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		BranchID:    branchID,
		CategoryID:  v.categoryID,
		Name:        req.Name,
		Description: database.Text(req.Description),
		Price:       database.Numeric(v.price),
		Station:     database.Text(req.Station),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		internalError(w, r, "update menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// SetAvailability marks an item sold out or back on sale.
func (h *MenuItemHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "menu item")
	if !ok {
		return
	}
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsAvailable == nil {
		writeError(w, http.StatusBadRequest, "is_available is required")
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), database.SetMenuItemAvailabilityParams{
		ID:          id,
		BranchID:    branchID,
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		internalError(w, r, "set menu item availability", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "menu item")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteMenuItem(r.Context(), database.SoftDeleteMenuItemParams{ID: id, BranchID: branchID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		internalError(w, r, "delete menu item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
