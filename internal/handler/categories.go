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

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategoriesByBranch(ctx context.Context, arg database.ListCategoriesByBranchParams) ([]database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	SoftDeleteCategory(ctx context.Context, arg database.SoftDeleteCategoryParams) (uuid.UUID, error)
}

// CategoryHandler handles menu category endpoints.
type CategoryHandler struct {
	store CategoryStore
}

func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterRoutes registers category CRUD endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/categories
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int32  `json:"sort_order"`
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	BranchID    uuid.UUID `json:"branch_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	SortOrder   int32     `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		BranchID:    c.BranchID,
		Name:        c.Name,
		Description: database.TextPtr(c.Description),
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

// --- Handlers ---

// List returns one page of active categories ordered by sort_order, name.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategoriesByBranch(r.Context(), database.ListCategoriesByBranchParams{
		BranchID: branchID,
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list categories", err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(categories, p, toCategoryResponse))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = trimmed(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		BranchID:    branchID,
		Name:        req.Name,
		Description: database.Text(req.Description),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		internalError(w, r, "create category", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	catID, ok := idParam(w, r, "category")
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = trimmed(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:          catID,
		BranchID:    branchID,
		Name:        req.Name,
		Description: database.Text(req.Description),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		internalError(w, r, "update category", err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete soft-deletes a category by setting is_active=false.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	catID, ok := idParam(w, r, "category")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteCategory(r.Context(), database.SoftDeleteCategoryParams{
		ID:       catID,
		BranchID: branchID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		internalError(w, r, "delete category", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
