package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiwari-pos/backoffice/internal/database"
)

type mockKDSStore struct {
	calls     []string
	updateErr error
	created   database.CreateKDSProfileParams
}

func (m *mockKDSStore) ClearDefaultKDSProfile(ctx context.Context, branchID uuid.UUID) error {
	m.calls = append(m.calls, "clear")
	return nil
}

func (m *mockKDSStore) CreateKDSProfile(ctx context.Context, arg database.CreateKDSProfileParams) (database.KdsProfile, error) {
	m.calls = append(m.calls, "create")
	m.created = arg
	return database.KdsProfile{ID: uuid.New(), BranchID: arg.BranchID, Name: arg.Name, IsDefault: arg.IsDefault,
		Stations: arg.Stations, OrderTypes: arg.OrderTypes}, nil
}

func (m *mockKDSStore) UpdateKDSProfile(ctx context.Context, arg database.UpdateKDSProfileParams) (database.KdsProfile, error) {
	m.calls = append(m.calls, "update")
	if m.updateErr != nil {
		return database.KdsProfile{}, m.updateErr
	}
	return database.KdsProfile{ID: arg.ID, BranchID: arg.BranchID, Name: arg.Name, IsDefault: arg.IsDefault}, nil
}

func newTestKDSService() (*KDSService, *mockKDSStore, *mockTx) {
	store := &mockKDSStore{}
	tx := &mockTx{}
	return NewKDSService(&mockTxBeginner{tx: tx}, func(db database.DBTX) KDSStore { return store }), store, tx
}

func TestCreateProfile_DefaultClearsPrevious(t *testing.T) {
	svc, store, tx := newTestKDSService()

	p, err := svc.CreateProfile(context.Background(), uuid.New(), KDSProfileInput{
		Name: "Grill line", Stations: []string{"GRILL"}, AlertAfterMinutes: 10, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsDefault {
		t.Error("expected default profile")
	}
	if len(store.calls) != 2 || store.calls[0] != "clear" || store.calls[1] != "create" {
		t.Errorf("calls: got %v, want [clear create]", store.calls)
	}
	if tx.committed != 1 {
		t.Errorf("commits: got %d", tx.committed)
	}
}

func TestCreateProfile_NonDefaultKeepsExisting(t *testing.T) {
	svc, store, _ := newTestKDSService()

	_, err := svc.CreateProfile(context.Background(), uuid.New(), KDSProfileInput{Name: "Bar", AlertAfterMinutes: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.calls) != 1 || store.calls[0] != "create" {
		t.Errorf("calls: got %v, want [create]", store.calls)
	}
	if store.created.Stations == nil || store.created.OrderTypes == nil {
		t.Error("empty filters should be stored as empty arrays, not NULL")
	}
}

func TestKDSProfileInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   KDSProfileInput
		want error
	}{
		{"missing name", KDSProfileInput{AlertAfterMinutes: 5}, ErrProfileNameRequired},
		{"bad station", KDSProfileInput{Name: "x", Stations: []string{"FRYER"}, AlertAfterMinutes: 5}, ErrInvalidStation},
		{"bad order type", KDSProfileInput{Name: "x", OrderTypes: []string{"DRIVE_THRU"}, AlertAfterMinutes: 5}, ErrInvalidOrderType},
		{"zero alert", KDSProfileInput{Name: "x"}, ErrInvalidAlertMinutes},
		{"ok", KDSProfileInput{Name: "x", Stations: []string{"RICE"}, OrderTypes: []string{"TAKEAWAY"}, AlertAfterMinutes: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	svc, store, tx := newTestKDSService()
	store.updateErr = pgx.ErrNoRows

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), uuid.New(), KDSProfileInput{Name: "x", AlertAfterMinutes: 3})
	if !errors.Is(err, ErrKDSProfileNotFound) {
		t.Fatalf("expected ErrKDSProfileNotFound, got %v", err)
	}
	if tx.committed != 0 {
		t.Error("nothing should be committed")
	}
}
