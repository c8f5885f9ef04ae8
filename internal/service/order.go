package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
)

const orderNumberConstraint = "orders_branch_id_order_number_key"

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidOrderType    = errors.New("invalid order_type")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID   = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound    = errors.New("menu item not found in branch")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
)

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	BranchID    uuid.UUID
	CreatedBy   uuid.UUID
	OrderType   string
	TableNumber string
	Notes       string
	Items       []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single item in the order.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates items, snapshots menu prices and creates the order
// atomically. Order-number races are retried.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !enum.IsOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	menuIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		menuIDs[i] = id
	}

	return retryOnConflict(orderNumberConstraint, func() (*CreateOrderResult, error) {
		return s.createOrderTx(ctx, req, menuIDs)
	})
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, menuIDs []uuid.UUID) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}

	total := decimal.Zero
	params := make([]database.CreateOrderItemParams, len(req.Items))
	for i, item := range req.Items {
		menuItem, err := store.GetMenuItem(ctx, database.GetMenuItemParams{ID: menuIDs[i], BranchID: req.BranchID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !menuItem.IsAvailable {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemUnavailable)
		}

		unitPrice := database.ToDecimal(menuItem.Price)
		subtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		total = total.Add(subtotal)

		params[i] = database.CreateOrderItemParams{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   item.Quantity,
			UnitPrice:  database.Numeric(unitPrice),
			Subtotal:   database.Numeric(subtotal),
			Station:    menuItem.Station,
			Notes:      database.Text(item.Notes),
		}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		BranchID:    req.BranchID,
		OrderNumber: fmt.Sprintf("ORD-%04d", nextNum),
		OrderType:   req.OrderType,
		TableNumber: database.Text(req.TableNumber),
		Notes:       database.Text(req.Notes),
		TotalAmount: database.Numeric(total),
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, len(params))
	for i, p := range params {
		p.OrderID = order.ID
		items[i], err = store.CreateOrderItem(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &CreateOrderResult{Order: order, Items: items}, nil
}
