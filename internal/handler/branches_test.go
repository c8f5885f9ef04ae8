package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/handler"
)

type mockBranchStore struct {
	branches []database.Branch
}

func (m *mockBranchStore) find(id uuid.UUID) int {
	for i, b := range m.branches {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (m *mockBranchStore) ListBranches(_ context.Context, arg database.ListBranchesParams) ([]database.Branch, error) {
	return paginate(m.branches, arg.Limit, arg.Offset), nil
}

func (m *mockBranchStore) GetBranch(_ context.Context, id uuid.UUID) (database.Branch, error) {
	if i := m.find(id); i >= 0 {
		return m.branches[i], nil
	}
	return database.Branch{}, pgx.ErrNoRows
}

func (m *mockBranchStore) CreateBranch(_ context.Context, arg database.CreateBranchParams) (database.Branch, error) {
	b := database.Branch{ID: uuid.New(), Name: arg.Name, Address: arg.Address, Phone: arg.Phone, IsActive: true, CreatedAt: time.Now()}
	m.branches = append(m.branches, b)
	return b, nil
}

func (m *mockBranchStore) UpdateBranch(_ context.Context, arg database.UpdateBranchParams) (database.Branch, error) {
	i := m.find(arg.ID)
	if i < 0 {
		return database.Branch{}, pgx.ErrNoRows
	}
	m.branches[i].Name, m.branches[i].Address, m.branches[i].Phone = arg.Name, arg.Address, arg.Phone
	return m.branches[i], nil
}

func (m *mockBranchStore) DeactivateBranch(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	i := m.find(id)
	if i < 0 || !m.branches[i].IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	m.branches[i].IsActive = false
	return id, nil
}

func setupBranchRouter(store *mockBranchStore) *chi.Mux {
	r := chi.NewRouter()
	h := handler.NewBranchHandler(store)
	r.Route("/branches", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Route("/{bid}", h.RegisterItemRoutes)
	})
	return r
}

func TestBranchCRUD(t *testing.T) {
	store := &mockBranchStore{}
	router := setupBranchRouter(store)

	rr := doRequest(t, router, "POST", "/branches", map[string]string{"name": "  Kiwari Dago ", "phone": "022-123"})
	expectStatus(t, rr, http.StatusCreated)
	created := decodeResponse(t, rr)
	if created["name"] != "Kiwari Dago" {
		t.Errorf("name: got %v", created["name"])
	}
	if created["address"] != nil {
		t.Errorf("empty address should be null, got %v", created["address"])
	}
	id := created["id"].(string)

	rr = doRequest(t, router, "PUT", "/branches/"+id, map[string]string{"name": "Kiwari Dago Atas"})
	expectStatus(t, rr, http.StatusOK)

	rr = doRequest(t, router, "GET", "/branches/"+id, nil)
	expectStatus(t, rr, http.StatusOK)
	if got := decodeResponse(t, rr)["name"]; got != "Kiwari Dago Atas" {
		t.Errorf("name after update: got %v", got)
	}

	expectStatus(t, doRequest(t, router, "DELETE", "/branches/"+id, nil), http.StatusNoContent)
	expectStatus(t, doRequest(t, router, "DELETE", "/branches/"+id, nil), http.StatusNotFound)
}

func TestBranchCreate_NameRequired(t *testing.T) {
	router := setupBranchRouter(&mockBranchStore{})
	rr := doRequest(t, router, "POST", "/branches", map[string]string{"name": "   "})
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestBranchList_PageSizeCapped(t *testing.T) {
	store := &mockBranchStore{}
	for i := 0; i < 3; i++ {
		store.branches = append(store.branches, database.Branch{ID: uuid.New(), Name: "b", IsActive: true})
	}
	router := setupBranchRouter(store)

	rr := doRequest(t, router, "GET", "/branches?page_size=1000", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeList(t, rr)
	if resp.PageSize != 100 {
		t.Errorf("page_size: got %d, want capped 100", resp.PageSize)
	}
	if resp.HasNextPage {
		t.Error("short page means no next page")
	}

	rr = doRequest(t, router, "GET", "/branches?page=0&page_size=-3", nil)
	resp = decodeList(t, rr)
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("defaults: got page=%d size=%d", resp.Page, resp.PageSize)
	}
}

func TestBranchGet_NotFound(t *testing.T) {
	router := setupBranchRouter(&mockBranchStore{})
	expectStatus(t, doRequest(t, router, "GET", "/branches/"+uuid.New().String(), nil), http.StatusNotFound)
	expectStatus(t, doRequest(t, router, "GET", "/branches/xyz", nil), http.StatusBadRequest)
}
