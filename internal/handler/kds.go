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
	"github.com/kiwari-pos/backoffice/internal/service"
)

// KDSServicer writes kitchen display profiles, keeping one default per
// branch. Satisfied by *service.KDSService.
type KDSServicer interface {
	CreateProfile(ctx context.Context, branchID uuid.UUID, in service.KDSProfileInput) (database.KdsProfile, error)
	UpdateProfile(ctx context.Context, branchID, id uuid.UUID, in service.KDSProfileInput) (database.KdsProfile, error)
}

type KDSStore interface {
	ListKDSProfiles(ctx context.Context, arg database.ListKDSProfilesParams) ([]database.KdsProfile, error)
	GetKDSProfile(ctx context.Context, arg database.GetKDSProfileParams) (database.KdsProfile, error)
	DeleteKDSProfile(ctx context.Context, arg database.DeleteKDSProfileParams) (uuid.UUID, error)
}

// KDSHandler handles kitchen display profile endpoints.
type KDSHandler struct {
	svc   KDSServicer
	store KDSStore
}

func NewKDSHandler(svc KDSServicer, store KDSStore) *KDSHandler {
	return &KDSHandler{svc: svc, store: store}
}

// RegisterRoutes registers KDS profile endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/kds-profiles
func (h *KDSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type kdsProfileRequest struct {
	Name              string   `json:"name"`
	Stations          []string `json:"stations"`
	OrderTypes        []string `json:"order_types"`
	ShowModifiers     bool     `json:"show_modifiers"`
	AlertAfterMinutes int32    `json:"alert_after_minutes"`
	IsDefault         bool     `json:"is_default"`
}

type kdsProfileResponse struct {
	ID                uuid.UUID `json:"id"`
	BranchID          uuid.UUID `json:"branch_id"`
	Name              string    `json:"name"`
	Stations          []string  `json:"stations"`
	OrderTypes        []string  `json:"order_types"`
	ShowModifiers     bool      `json:"show_modifiers"`
	AlertAfterMinutes int32     `json:"alert_after_minutes"`
	IsDefault         bool      `json:"is_default"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toKDSProfileResponse(p database.KdsProfile) kdsProfileResponse {
	stations, types := p.Stations, p.OrderTypes
	if stations == nil {
		stations = []string{}
	}
	if types == nil {
		types = []string{}
	}
	return kdsProfileResponse{
		ID:                p.ID,
		BranchID:          p.BranchID,
		Name:              p.Name,
		Stations:          stations,
		OrderTypes:        types,
		ShowModifiers:     p.ShowModifiers,
		AlertAfterMinutes: p.AlertAfterMinutes,
		IsDefault:         p.IsDefault,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (req kdsProfileRequest) input() service.KDSProfileInput {
	return service.KDSProfileInput{
		Name:              trimmed(req.Name),
		Stations:          req.Stations,
		OrderTypes:        req.OrderTypes,
		ShowModifiers:     req.ShowModifiers,
		AlertAfterMinutes: req.AlertAfterMinutes,
		IsDefault:         req.IsDefault,
	}
}

func isKDSValidationError(err error) bool {
	return errors.Is(err, service.ErrProfileNameRequired) ||
		errors.Is(err, service.ErrInvalidStation) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidAlertMinutes)
}

func (h *KDSHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	profiles, err := h.store.ListKDSProfiles(r.Context(), database.ListKDSProfilesParams{
		BranchID: branchID, Limit: p.Limit(), Offset: p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list kds profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(profiles, p, toKDSProfileResponse))
}

func (h *KDSHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "kds profile")
	if !ok {
		return
	}

	profile, err := h.store.GetKDSProfile(r.Context(), database.GetKDSProfileParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "kds profile not found")
			return
		}
		internalError(w, r, "get kds profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toKDSProfileResponse(profile))
}

func (h *KDSHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	var req kdsProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.svc.CreateProfile(r.Context(), branchID, req.input())
	if err != nil {
		if isKDSValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, r, "create kds profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, toKDSProfileResponse(profile))
}

func (h *KDSHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "kds profile")
	if !ok {
		return
	}
	var req kdsProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), branchID, id, req.input())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKDSProfileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case isKDSValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, r, "update kds profile", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toKDSProfileResponse(profile))
}

func (h *KDSHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "kds profile")
	if !ok {
		return
	}

	if _, err := h.store.DeleteKDSProfile(r.Context(), database.DeleteKDSProfileParams{ID: id, BranchID: branchID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "kds profile not found")
			return
		}
		internalError(w, r, "delete kds profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
