package handler_test

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
	"github.com/kiwari-pos/backoffice/internal/handler"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsersByBranch(_ context.Context, arg database.ListUsersByBranchParams) ([]database.User, error) {
	var result []database.User
	for _, u := range m.users {
		if u.BranchID == arg.BranchID && u.IsActive {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return paginate(result, arg.Limit, arg.Offset), nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	for _, existing := range m.users {
		if existing.Email == arg.Email && existing.IsActive {
			return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		BranchID:       arg.BranchID,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		Pin:            arg.Pin,
		IsActive:       true,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok || u.BranchID != arg.BranchID || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	for _, existing := range m.users {
		if existing.Email == arg.Email && existing.ID != arg.ID && existing.IsActive {
			return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u.Email, u.FullName, u.Role, u.Pin = arg.Email, arg.FullName, arg.Role, arg.Pin
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) SoftDeleteUser(_ context.Context, arg database.SoftDeleteUserParams) (uuid.UUID, error) {
	u, ok := m.users[arg.ID]
	if !ok || u.BranchID != arg.BranchID || !u.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	u.IsActive = false
	m.users[u.ID] = u
	return u.ID, nil
}

// paginate applies LIMIT/OFFSET to an in-memory result.
func paginate[T any](rows []T, limit, offset int32) []T {
	if int(offset) >= len(rows) {
		return []T{}
	}
	end := min(int(offset+limit), len(rows))
	return rows[offset:end]
}

// --- Helpers ---

func setupUserRouter(store *mockUserStore, role string) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Use(asUser(uuid.New(), uuid.Nil, role))
	r.Route("/branches/{bid}/users", h.RegisterRoutes)
	return r
}

func validCreateUser() map[string]interface{} {
	return map[string]interface{}{
		"email":     "Siti@Kiwari.test",
		"password":  "rahasia123",
		"full_name": "Siti Aminah",
		"role":      enum.UserRoleCashier,
		"pin":       "2468",
	}
}

// --- List tests ---

func TestListUsers_PaginatesBranchUsers(t *testing.T) {
	store := newMockUserStore()
	branchID := uuid.New()
	for _, name := range []string{"Andi", "Budi", "Citra"} {
		u := database.User{ID: uuid.New(), BranchID: branchID, FullName: name, Email: name + "@x.test", Role: "CASHIER", IsActive: true}
		store.users[u.ID] = u
	}
	other := database.User{ID: uuid.New(), BranchID: uuid.New(), FullName: "Other", IsActive: true}
	store.users[other.ID] = other

	router := setupUserRouter(store, enum.UserRoleManager)

	rr := doRequest(t, router, "GET", "/branches/"+branchID.String()+"/users?page_size=2", nil)
	expectStatus(t, rr, http.StatusOK)
	page1 := decodeList(t, rr)
	if len(page1.Data) != 2 || !page1.HasNextPage || page1.Page != 1 {
		t.Fatalf("page 1: got %d rows, has_next=%v, page=%d", len(page1.Data), page1.HasNextPage, page1.Page)
	}

	rr = doRequest(t, router, "GET", "/branches/"+branchID.String()+"/users?page=2&page_size=2", nil)
	expectStatus(t, rr, http.StatusOK)
	page2 := decodeList(t, rr)
	if len(page2.Data) != 1 || page2.HasNextPage {
		t.Fatalf("page 2: got %d rows, has_next=%v", len(page2.Data), page2.HasNextPage)
	}
	if page2.Data[0]["full_name"] != "Citra" {
		t.Errorf("page 2 row: got %v", page2.Data[0]["full_name"])
	}
	if _, ok := page2.Data[0]["hashed_password"]; ok {
		t.Error("hashed_password must not be exposed")
	}
}

func TestListUsers_InvalidBranchID(t *testing.T) {
	router := setupUserRouter(newMockUserStore(), enum.UserRoleOwner)
	rr := doRequest(t, router, "GET", "/branches/not-a-uuid/users", nil)
	expectStatus(t, rr, http.StatusBadRequest)
}

// --- Create tests ---

func TestCreateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store, enum.UserRoleManager)
	branchID := uuid.New()

	rr := doRequest(t, router, "POST", "/branches/"+branchID.String()+"/users", validCreateUser())
	expectStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["email"] != "siti@kiwari.test" {
		t.Errorf("email should be normalised, got %v", resp["email"])
	}
	if resp["has_pin"] != true {
		t.Errorf("has_pin: got %v", resp["has_pin"])
	}
	if _, ok := resp["pin"]; ok {
		t.Error("pin must not be exposed")
	}

	for _, u := range store.users {
		if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("rahasia123")); err != nil {
			t.Errorf("stored password is not a bcrypt hash of the input: %v", err)
		}
		if u.BranchID != branchID {
			t.Errorf("branch: got %v, want %v", u.BranchID, branchID)
		}
	}
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		want   int
	}{
		{"missing email", func(b map[string]interface{}) { delete(b, "email") }, http.StatusBadRequest},
		{"short password", func(b map[string]interface{}) { b["password"] = "abc" }, http.StatusBadRequest},
		{"bad email", func(b map[string]interface{}) { b["email"] = "no-at-sign" }, http.StatusBadRequest},
		{"bad role", func(b map[string]interface{}) { b["role"] = "SUPERVISOR" }, http.StatusBadRequest},
		{"pin too short", func(b map[string]interface{}) { b["pin"] = "12" }, http.StatusBadRequest},
		{"pin too long", func(b map[string]interface{}) { b["pin"] = "1234567" }, http.StatusBadRequest},
		{"pin not digits", func(b map[string]interface{}) { b["pin"] = "12a4" }, http.StatusBadRequest},
		{"manager creates owner", func(b map[string]interface{}) { b["role"] = enum.UserRoleOwner }, http.StatusForbidden},
		{"no pin is fine", func(b map[string]interface{}) { delete(b, "pin") }, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(newMockUserStore(), enum.UserRoleManager)
			body := validCreateUser()
			tt.mutate(body)
			rr := doRequest(t, router, "POST", "/branches/"+uuid.New().String()+"/users", body)
			expectStatus(t, rr, tt.want)
		})
	}
}

func TestCreateUser_OwnerMayCreateOwner(t *testing.T) {
	router := setupUserRouter(newMockUserStore(), enum.UserRoleOwner)
	body := validCreateUser()
	body["role"] = enum.UserRoleOwner

	rr := doRequest(t, router, "POST", "/branches/"+uuid.New().String()+"/users", body)
	expectStatus(t, rr, http.StatusCreated)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store, enum.UserRoleManager)
	path := "/branches/" + uuid.New().String() + "/users"

	expectStatus(t, doRequest(t, router, "POST", path, validCreateUser()), http.StatusCreated)
	expectStatus(t, doRequest(t, router, "POST", path, validCreateUser()), http.StatusConflict)
}

// --- Update / Delete tests ---

func TestUpdateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	branchID := uuid.New()
	u := database.User{ID: uuid.New(), BranchID: branchID, Email: "a@x.test", FullName: "A", Role: "CASHIER",
		Pin: pgtype.Text{String: "1111", Valid: true}, IsActive: true}
	store.users[u.ID] = u
	router := setupUserRouter(store, enum.UserRoleManager)

	rr := doRequest(t, router, "PUT", "/branches/"+branchID.String()+"/users/"+u.ID.String(), map[string]string{
		"email": "a@x.test", "full_name": "A. Kitchen", "role": "KITCHEN",
	})
	expectStatus(t, rr, http.StatusOK)

	got := store.users[u.ID]
	if got.Role != "KITCHEN" || got.FullName != "A. Kitchen" {
		t.Errorf("not updated: %+v", got)
	}
	if got.Pin.Valid {
		t.Error("omitting pin should clear it")
	}
}

func TestUpdateUser_WrongBranch(t *testing.T) {
	store := newMockUserStore()
	u := database.User{ID: uuid.New(), BranchID: uuid.New(), Email: "a@x.test", IsActive: true}
	store.users[u.ID] = u
	router := setupUserRouter(store, enum.UserRoleOwner)

	rr := doRequest(t, router, "PUT", "/branches/"+uuid.New().String()+"/users/"+u.ID.String(), map[string]string{
		"email": "a@x.test", "full_name": "A", "role": "CASHIER",
	})
	expectStatus(t, rr, http.StatusNotFound)
}

func TestDeleteUser(t *testing.T) {
	store := newMockUserStore()
	branchID := uuid.New()
	u := database.User{ID: uuid.New(), BranchID: branchID, IsActive: true}
	store.users[u.ID] = u
	router := setupUserRouter(store, enum.UserRoleOwner)
	path := "/branches/" + branchID.String() + "/users/" + u.ID.String()

	expectStatus(t, doRequest(t, router, "DELETE", path, nil), http.StatusNoContent)
	if store.users[u.ID].IsActive {
		t.Error("user should be deactivated")
	}
	expectStatus(t, doRequest(t, router, "DELETE", path, nil), http.StatusNotFound)
	expectStatus(t, doRequest(t, router, "DELETE", "/branches/"+branchID.String()+"/users/bad", nil), http.StatusBadRequest)
}
