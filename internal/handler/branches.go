package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiwari-pos/backoffice/internal/database"
)

// BranchStore defines the database methods needed by branch handlers.
type BranchStore interface {
	ListBranches(ctx context.Context, arg database.ListBranchesParams) ([]database.Branch, error)
	GetBranch(ctx context.Context, id uuid.UUID) (database.Branch, error)
	CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error)
	UpdateBranch(ctx context.Context, arg database.UpdateBranchParams) (database.Branch, error)
	DeactivateBranch(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// BranchHandler handles branch management. Owner only.
type BranchHandler struct {
	store BranchStore
}

func NewBranchHandler(store BranchStore) *BranchHandler {
	return &BranchHandler{store: store}
}

// RegisterRoutes is mounted at /branches.
func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// RegisterItemRoutes is mounted inside the branch-scoped subrouter
// /branches/{bid}, next to the branch's own resources.
func (h *BranchHandler) RegisterItemRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Delete("/", h.Deactivate)
}

type branchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type branchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBranchResponse(b database.Branch) branchResponse {
	return branchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   database.TextPtr(b.Address),
		Phone:     database.TextPtr(b.Phone),
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}
	branches, err := h.store.ListBranches(r.Context(), database.ListBranchesParams{
		Limit:  p.Limit(),
		Offset: p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list branches", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(branches, p, toBranchResponse))
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := branchParam(w, r)
	if !ok {
		return
	}
	b, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		internalError(w, r, "get branch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBranchResponse(b))
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = trimmed(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	b, err := h.store.CreateBranch(r.Context(), database.CreateBranchParams{
		Name:    req.Name,
		Address: database.Text(req.Address),
		Phone:   database.Text(req.Phone),
	})
	if err != nil {
		internalError(w, r, "create branch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBranchResponse(b))
}

func (h *BranchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := branchParam(w, r)
	if !ok {
		return
	}
	var req branchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = trimmed(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	b, err := h.store.UpdateBranch(r.Context(), database.UpdateBranchParams{
		ID:      id,
		Name:    req.Name,
		Address: database.Text(req.Address),
		Phone:   database.Text(req.Phone),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		internalError(w, r, "update branch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBranchResponse(b))
}

// Deactivate hides a branch. Its history is kept.
func (h *BranchHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := branchParam(w, r)
	if !ok {
		return
	}
	if _, err := h.store.DeactivateBranch(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		internalError(w, r, "deactivate branch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
