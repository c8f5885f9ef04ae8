package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/middleware"
	"github.com/kiwari-pos/backoffice/internal/service"
)

const pageSlugConstraint = "cms_pages_slug_key"

type PageStore interface {
	ListPages(ctx context.Context, arg database.ListPagesParams) ([]database.CmsPage, error)
	GetPage(ctx context.Context, id uuid.UUID) (database.CmsPage, error)
	GetPublishedPageBySlug(ctx context.Context, slug string) (database.CmsPage, error)
	CreatePage(ctx context.Context, arg database.CreatePageParams) (database.CmsPage, error)
	UpdatePage(ctx context.Context, arg database.UpdatePageParams) (database.CmsPage, error)
	DeletePage(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// PageHandler handles CMS page endpoints. Pages are global, not branch-scoped.
type PageHandler struct {
	store PageStore
}

func NewPageHandler(store PageStore) *PageHandler {
	return &PageHandler{store: store}
}

// RegisterRoutes registers page management endpoints at /pages.
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// RegisterPublicRoutes registers the unauthenticated read of published pages.
func (h *PageHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/slug/{slug}", h.GetBySlug)
}

type pageRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Body        string `json:"body"`
	IsPublished bool   `json:"is_published"`
}

type pageResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsPublished bool      `json:"is_published"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPageResponse(p database.CmsPage) pageResponse {
	return pageResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Body:        p.Body,
		IsPublished: p.IsPublished,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// normalize trims the title and derives the slug from it when none is given.
// It returns a validation message, or "" when the request is usable.
func (req *pageRequest) normalize() string {
	req.Title = trimmed(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Slug == "" {
		req.Slug = slug.Make(req.Title)
		if req.Slug == "" {
			return "cannot derive a slug from title, provide one"
		}
		return ""
	}
	if !slug.IsSlug(req.Slug) {
		return "invalid slug"
	}
	return ""
}

// List handles GET /pages. published=true hides drafts.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}
	published, _ := strconv.ParseBool(r.URL.Query().Get("published"))

	pages, err := h.store.ListPages(r.Context(), database.ListPagesParams{
		PublishedOnly: published, Limit: p.Limit(), Offset: p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(pages, p, toPageResponse))
}

func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "page")
	if !ok {
		return
	}
	page, err := h.store.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		internalError(w, r, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

// GetBySlug handles GET /pages/slug/{slug}. Drafts are not found.
func (h *PageHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	page, err := h.store.GetPublishedPageBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		internalError(w, r, "get page by slug", err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	page, err := h.store.CreatePage(r.Context(), database.CreatePageParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Body:        req.Body,
		IsPublished: req.IsPublished,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		if service.IsUniqueViolation(err, pageSlugConstraint) {
			writeError(w, http.StatusConflict, "slug already exists")
			return
		}
		internalError(w, r, "create page", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPageResponse(page))
}

func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "page")
	if !ok {
		return
	}
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.normalize(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	page, err := h.store.UpdatePage(r.Context(), database.UpdatePageParams{
		ID:          id,
		Slug:        req.Slug,
		Title:       req.Title,
		Body:        req.Body,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeError(w, http.StatusNotFound, "page not found")
		case service.IsUniqueViolation(err, pageSlugConstraint):
			writeError(w, http.StatusConflict, "slug already exists")
		default:
			internalError(w, r, "update page", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "page")
	if !ok {
		return
	}
	if _, err := h.store.DeletePage(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		internalError(w, r, "delete page", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
