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
	"github.com/kiwari-pos/backoffice/internal/service"
)

type DealStore interface {
	ListDeals(ctx context.Context, arg database.ListDealsParams) ([]database.Deal, error)
	ListActiveDeals(ctx context.Context, arg database.ListActiveDealsParams) ([]database.Deal, error)
	GetDeal(ctx context.Context, arg database.GetDealParams) (database.Deal, error)
	CreateDeal(ctx context.Context, arg database.CreateDealParams) (database.Deal, error)
	UpdateDeal(ctx context.Context, arg database.UpdateDealParams) (database.Deal, error)
	DeleteDeal(ctx context.Context, arg database.DeleteDealParams) (uuid.UUID, error)
}

// DealHandler handles time-boxed discount endpoints.
type DealHandler struct {
	store DealStore
	now   func() time.Time
}

func NewDealHandler(store DealStore) *DealHandler {
	return &DealHandler{store: store, now: time.Now}
}

// RegisterRoutes registers deal endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/deals
func (h *DealHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/active", h.Active)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type dealRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	IsActive      *bool     `json:"is_active"`
}

type dealResponse struct {
	ID            uuid.UUID `json:"id"`
	BranchID      uuid.UUID `json:"branch_id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	IsActive      bool      `json:"is_active"`
}

func toDealResponse(d database.Deal) dealResponse {
	return dealResponse{
		ID:            d.ID,
		BranchID:      d.BranchID,
		Name:          d.Name,
		Description:   database.TextPtr(d.Description),
		DiscountType:  d.DiscountType,
		DiscountValue: database.FormatNumeric(d.DiscountValue, 2),
		StartsAt:      d.StartsAt,
		EndsAt:        d.EndsAt,
		IsActive:      d.IsActive,
	}
}

// parse validates the request as a service.Deal. is_active defaults to true.
func (req dealRequest) parse() (service.Deal, error) {
	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil {
		return service.Deal{}, service.ErrInvalidDiscountValue
	}
	d := service.Deal{
		Name:          trimmed(req.Name),
		DiscountType:  req.DiscountType,
		DiscountValue: value,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	return d, d.Validate()
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	deals, err := h.store.ListDeals(r.Context(), database.ListDealsParams{BranchID: branchID, Limit: p.Limit(), Offset: p.Offset()})
	if err != nil {
		internalError(w, r, "list deals", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(deals, p, toDealResponse))
}

// Active handles GET /branches/{bid}/deals/active?at=RFC3339. Without at the
// current time is used.
func (h *DealHandler) Active(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	at := h.now()
	if s := r.URL.Query().Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at, use RFC3339")
			return
		}
		at = t
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	deals, err := h.store.ListActiveDeals(r.Context(), database.ListActiveDealsParams{
		BranchID: branchID, At: at, Limit: p.Limit(), Offset: p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list active deals", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(deals, p, toDealResponse))
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "deal")
	if !ok {
		return
	}

	d, err := h.store.GetDeal(r.Context(), database.GetDealParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "deal not found")
			return
		}
		internalError(w, r, "get deal", err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(d))
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	var req dealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deal, err := req.parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.store.CreateDeal(r.Context(), database.CreateDealParams{
		BranchID:      branchID,
		Name:          deal.Name,
		Description:   database.Text(req.Description),
		DiscountType:  deal.DiscountType,
		DiscountValue: database.Numeric(deal.DiscountValue),
		StartsAt:      deal.StartsAt,
		EndsAt:        deal.EndsAt,
		IsActive:      deal.IsActive,
	})
	if err != nil {
		internalError(w, r, "create deal", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDealResponse(d))
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "deal")
	if !ok {
		return
	}
	var req dealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deal, err := req.parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.store.UpdateDeal(r.Context(), database.UpdateDealParams{
		ID:            id,
		BranchID:      branchID,
		Name:          deal.Name,
		Description:   database.Text(req.Description),
		DiscountType:  deal.DiscountType,
		DiscountValue: database.Numeric(deal.DiscountValue),
		StartsAt:      deal.StartsAt,
		EndsAt:        deal.EndsAt,
		IsActive:      deal.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "deal not found")
			return
		}
		internalError(w, r, "update deal", err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(d))
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "deal")
	if !ok {
		return
	}

	if _, err := h.store.DeleteDeal(r.Context(), database.DeleteDealParams{ID: id, BranchID: branchID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "deal not found")
			return
		}
		internalError(w, r, "delete deal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
