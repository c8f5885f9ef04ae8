package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kiwari-pos/backoffice/internal/database"
)

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getNextOrderNumberFn func(ctx context.Context, branchID uuid.UUID) (int32, error)
	getMenuItemFn        func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	createOrderFn        func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn    func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	return m.getNextOrderNumberFn(ctx, branchID)
}
func (m *mockOrderStore) GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
	return m.getMenuItemFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}

func newTestOrderService(store *mockOrderStore) (*OrderService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore), tx
}

// defaultOrderStore knows two menu items: a 25000 grill item and a 8000.50
// beverage. Individual tests override the functions they care about.
func defaultOrderStore(branchID, satayID, teaID uuid.UUID) *mockOrderStore {
	menu := map[uuid.UUID]database.MenuItem{
		satayID: {ID: satayID, BranchID: branchID, Name: "Sate Ayam", Price: makeNumeric("25000.00"),
			Station: pgtype.Text{String: "GRILL", Valid: true}, IsAvailable: true},
		teaID: {ID: teaID, BranchID: branchID, Name: "Es Teh", Price: makeNumeric("8000.50"),
			Station: pgtype.Text{String: "BEVERAGE", Valid: true}, IsAvailable: true},
	}
	return &mockOrderStore{
		getNextOrderNumberFn: func(ctx context.Context, bid uuid.UUID) (int32, error) {
			return 1, nil
		},
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			item, ok := menu[arg.ID]
			if !ok || arg.BranchID != branchID {
				return database.MenuItem{}, pgx.ErrNoRows
			}
			return item, nil
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID: uuid.New(), BranchID: arg.BranchID, OrderNumber: arg.OrderNumber,
				OrderType: arg.OrderType, Status: "NEW", TotalAmount: arg.TotalAmount,
				TableNumber: arg.TableNumber, CreatedBy: arg.CreatedBy,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID: uuid.New(), OrderID: arg.OrderID, MenuItemID: arg.MenuItemID, Name: arg.Name,
				Quantity: arg.Quantity, UnitPrice: arg.UnitPrice, Subtotal: arg.Subtotal, Station: arg.Station,
			}, nil
		},
	}
}

func basicOrderReq(branchID uuid.UUID, menuItemID string) CreateOrderRequest {
	return CreateOrderRequest{
		BranchID:  branchID,
		CreatedBy: uuid.New(),
		OrderType: "DINE_IN",
		Items:     []CreateOrderItemRequest{{MenuItemID: menuItemID, Quantity: 2}},
	}
}

// =====================
// Validation tests
// =====================

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, _ := newTestOrderService(&mockOrderStore{})
	req := basicOrderReq(uuid.New(), uuid.NewString())
	req.Items = nil

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got %v", err)
	}
}

func TestCreateOrder_InvalidOrderType(t *testing.T) {
	svc, _ := newTestOrderService(&mockOrderStore{})
	req := basicOrderReq(uuid.New(), uuid.NewString())
	req.OrderType = "CATERING"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidOrderType) {
		t.Fatalf("expected ErrInvalidOrderType, got %v", err)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	svc, _ := newTestOrderService(&mockOrderStore{})
	req := basicOrderReq(uuid.New(), uuid.NewString())
	req.Items[0].Quantity = 0

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCreateOrder_InvalidMenuItemID(t *testing.T) {
	svc, _ := newTestOrderService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), basicOrderReq(uuid.New(), "not-a-uuid"))
	if !errors.Is(err, ErrInvalidMenuItemID) {
		t.Fatalf("expected ErrInvalidMenuItemID, got %v", err)
	}
}

func TestCreateOrder_MenuItemNotFound(t *testing.T) {
	branchID := uuid.New()
	store := defaultOrderStore(branchID, uuid.New(), uuid.New())
	svc, _ := newTestOrderService(store)

	_, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, uuid.NewString()))
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got %v", err)
	}
}

func TestCreateOrder_MenuItemUnavailable(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	store.getMenuItemFn = func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
		return database.MenuItem{ID: arg.ID, Price: makeNumeric("1"), IsAvailable: false}, nil
	}
	svc, tx := newTestOrderService(store)

	_, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if !errors.Is(err, ErrMenuItemUnavailable) {
		t.Fatalf("expected ErrMenuItemUnavailable, got %v", err)
	}
	if tx.committed != 0 {
		t.Error("transaction should not be committed")
	}
}

// =====================
// Price snapshot tests
// =====================

func TestCreateOrder_BasicPrice(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	svc, tx := newTestOrderService(store)

	result, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(result.Order.TotalAmount, "50000") {
		t.Errorf("total: got %v, want 50000", result.Order.TotalAmount)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(result.Items))
	}
	item := result.Items[0]
	if !numericEquals(item.UnitPrice, "25000") || !numericEquals(item.Subtotal, "50000") {
		t.Errorf("item prices: unit %v subtotal %v", item.UnitPrice, item.Subtotal)
	}
	if item.Name != "Sate Ayam" || item.Station.String != "GRILL" {
		t.Errorf("snapshot: got name %q station %q", item.Name, item.Station.String)
	}
	if item.OrderID != result.Order.ID {
		t.Error("item should reference created order")
	}
	if tx.committed != 1 {
		t.Errorf("commits: got %d, want 1", tx.committed)
	}
}

func TestCreateOrder_MultipleItems(t *testing.T) {
	branchID, satayID, teaID := uuid.New(), uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, teaID)
	svc, _ := newTestOrderService(store)

	req := basicOrderReq(branchID, satayID.String())
	req.Items = append(req.Items, CreateOrderItemRequest{MenuItemID: teaID.String(), Quantity: 3, Notes: "less ice"})

	result, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 × 25000 + 3 × 8000.50
	if !numericEquals(result.Order.TotalAmount, "74001.50") {
		t.Errorf("total: got %v, want 74001.50", result.Order.TotalAmount)
	}
}

func TestCreateOrder_OrderNumberFormat(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	store.getNextOrderNumberFn = func(ctx context.Context, bid uuid.UUID) (int32, error) { return 42, nil }
	svc, _ := newTestOrderService(store)

	result, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.OrderNumber != "ORD-0042" {
		t.Errorf("order number: got %s, want ORD-0042", result.Order.OrderNumber)
	}
}

// =====================
// Retry on unique constraint violation
// =====================

func TestCreateOrder_RetryOnUniqueViolation(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	base := store.createOrderFn

	createCalls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		createCalls++
		if createCalls == 1 {
			return database.Order{}, uniqueViolation(orderNumberConstraint)
		}
		return base(ctx, arg)
	}
	numCalls := 0
	store.getNextOrderNumberFn = func(ctx context.Context, bid uuid.UUID) (int32, error) {
		numCalls++
		return int32(numCalls), nil
	}

	svc, _ := newTestOrderService(store)
	result, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if createCalls != 2 || numCalls != 2 {
		t.Errorf("calls: create %d, next number %d, want 2 and 2", createCalls, numCalls)
	}
	if result.Order.OrderNumber != "ORD-0002" {
		t.Errorf("order number: got %s, want ORD-0002", result.Order.OrderNumber)
	}
}

func TestCreateOrder_RetryExhausted(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	calls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		calls++
		return database.Order{}, uniqueViolation(orderNumberConstraint)
	}

	svc, _ := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if err == nil {
		t.Fatal("expected error after exhausting retries, got nil")
	}
	if !strings.Contains(err.Error(), "create order") {
		t.Errorf("expected 'create order' in error message, got: %v", err)
	}
	if calls != maxNumberRetries {
		t.Errorf("attempts: got %d, want %d", calls, maxNumberRetries)
	}
}

func TestCreateOrder_NonUniqueErrorNotRetried(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	store := defaultOrderStore(branchID, satayID, uuid.New())
	calls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		calls++
		return database.Order{}, uniqueViolation("some_other_key")
	}

	svc, _ := newTestOrderService(store)
	if _, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String())); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("attempts: got %d, want 1", calls)
	}
}

func TestCreateOrder_BeginError(t *testing.T) {
	branchID, satayID := uuid.New(), uuid.New()
	svc := NewOrderService(&mockTxBeginner{err: errors.New("pool closed")},
		func(db database.DBTX) OrderStore { return defaultOrderStore(branchID, satayID, uuid.New()) })

	_, err := svc.CreateOrder(context.Background(), basicOrderReq(branchID, satayID.String()))
	if err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin tx error, got %v", err)
	}
}

// =====================
// Status transitions
// =====================

func TestValidateOrderTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     error
	}{
		{"NEW", "PREPARING", nil},
		{"PREPARING", "READY", nil},
		{"READY", "COMPLETED", nil},
		{"NEW", "CANCELLED", nil},
		{"READY", "CANCELLED", nil},
		{"NEW", "READY", ErrInvalidTransition},
		{"COMPLETED", "CANCELLED", ErrInvalidTransition},
		{"CANCELLED", "NEW", ErrInvalidTransition},
		{"NEW", "SERVED", ErrInvalidStatus},
	}
	for _, tt := range tests {
		if got := ValidateOrderTransition(tt.from, tt.to); !errors.Is(got, tt.want) {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidatePurchaseOrderTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     error
	}{
		{"DRAFT", "ORDERED", nil},
		{"DRAFT", "CANCELLED", nil},
		{"ORDERED", "CANCELLED", nil},
		{"ORDERED", "RECEIVED", nil},
		{"PARTIALLY_RECEIVED", "PARTIALLY_RECEIVED", nil},
		{"PARTIALLY_RECEIVED", "CANCELLED", ErrInvalidTransition},
		{"RECEIVED", "ORDERED", ErrInvalidTransition},
		{"DRAFT", "RECEIVED", ErrInvalidTransition},
		{"DRAFT", "SHIPPED", ErrInvalidStatus},
	}
	for _, tt := range tests {
		if got := ValidatePurchaseOrderTransition(tt.from, tt.to); !errors.Is(got, tt.want) {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
