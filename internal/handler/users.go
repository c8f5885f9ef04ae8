package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
	"github.com/kiwari-pos/backoffice/internal/middleware"
	"github.com/kiwari-pos/backoffice/internal/service"
)

const minPasswordLength = 8

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsersByBranch(ctx context.Context, arg database.ListUsersByBranchParams) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	SoftDeleteUser(ctx context.Context, arg database.SoftDeleteUserParams) (uuid.UUID, error)
}

// UserHandler handles staff account endpoints.
type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/users
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Pin      string `json:"pin"`
}

type updateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Pin      string `json:"pin"`
}

type userDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	HasPin    bool      `json:"has_pin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserDetailResponse(u database.User) userDetailResponse {
	return userDetailResponse{
		ID:        u.ID,
		BranchID:  u.BranchID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		HasPin:    u.Pin.Valid,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Handlers ---

// List returns one page of active users in the branch.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	p, ok := parsePagination(w, r)
	if !ok {
		return
	}

	users, err := h.store.ListUsersByBranch(r.Context(), database.ListUsersByBranchParams{
		BranchID: branchID,
		Limit:    p.Limit(),
		Offset:   p.Offset(),
	})
	if err != nil {
		internalError(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(users, p, toUserDetailResponse))
}

// Create adds a staff account to the branch.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(trimmed(req.Email))

	if req.Email == "" || req.Password == "" || req.FullName == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "email, password, full_name, and role are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if msg := validateUserFields(r, req.Email, req.Role, req.Pin); msg != "" {
		status := http.StatusBadRequest
		if msg == errMsgRoleNotAllowed {
			status = http.StatusForbidden
		}
		writeError(w, status, msg)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, r, "hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		BranchID:       branchID,
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           req.Role,
		Pin:            database.Text(req.Pin),
	})
	if err != nil {
		if service.IsUniqueViolation(err, "") {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		internalError(w, r, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDetailResponse(user))
}

// Update modifies an existing user in the branch.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "user")
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(trimmed(req.Email))

	if req.Email == "" || req.FullName == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "email, full_name, and role are required")
		return
	}
	if msg := validateUserFields(r, req.Email, req.Role, req.Pin); msg != "" {
		status := http.StatusBadRequest
		if msg == errMsgRoleNotAllowed {
			status = http.StatusForbidden
		}
		writeError(w, status, msg)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       userID,
		BranchID: branchID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Pin:      database.Text(req.Pin),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if service.IsUniqueViolation(err, "") {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		internalError(w, r, "update user", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDetailResponse(user))
}

// Delete deactivates a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branchID, ok := branchParam(w, r)
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "user")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteUser(r.Context(), database.SoftDeleteUserParams{
		ID:       userID,
		BranchID: branchID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		internalError(w, r, "delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

const errMsgRoleNotAllowed = "managers cannot assign the OWNER role"

// validateUserFields returns an error message, or "" when the fields are
// acceptable for the caller.
func validateUserFields(r *http.Request, email, role, pin string) string {
	if !strings.Contains(email, "@") {
		return "invalid email format"
	}
	if !enum.IsUserRole(role) {
		return "invalid role"
	}
	if role == enum.UserRoleOwner {
		if claims := middleware.ClaimsFromContext(r.Context()); claims == nil || claims.Role != enum.UserRoleOwner {
			return errMsgRoleNotAllowed
		}
	}
	if pin != "" && !isValidPin(pin) {
		return "PIN must be 4-6 digits"
	}
	return ""
}

func isValidPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
