package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, branch_id, order_number, order_type, status, table_number, notes, total_amount, created_by, created_at, updated_at`

const orderItemColumns = `id, order_id, menu_item_id, name, quantity, unit_price, subtotal, station, notes`

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT (COALESCE(MAX(NULLIF(regexp_replace(order_number, '\D', '', 'g'), '')::int), 0) + 1)::int
FROM orders
WHERE branch_id = $1
`

func (q *Queries) GetNextOrderNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, getNextOrderNumber, branchID).Scan(&next)
	return next, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (branch_id, order_number, order_type, table_number, notes, total_amount, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	BranchID    uuid.UUID      `json:"branch_id"`
	OrderNumber string         `json:"order_number"`
	OrderType   string         `json:"order_type"`
	TableNumber pgtype.Text    `json:"table_number"`
	Notes       pgtype.Text    `json:"notes"`
	TotalAmount pgtype.Numeric `json:"total_amount"`
	CreatedBy   uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return queryOne[Order](ctx, q.db, createOrder,
		arg.BranchID, arg.OrderNumber, arg.OrderType, arg.TableNumber, arg.Notes, arg.TotalAmount, arg.CreatedBy)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, subtotal, station, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Name       string         `json:"name"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	Station    pgtype.Text    `json:"station"`
	Notes      pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return queryOne[OrderItem](ctx, q.db, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Name, arg.Quantity, arg.UnitPrice, arg.Subtotal, arg.Station, arg.Notes)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE branch_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR order_type = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5)
ORDER BY created_at DESC, id
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	BranchID  uuid.UUID          `json:"branch_id"`
	Status    pgtype.Text        `json:"status"`
	OrderType pgtype.Text        `json:"order_type"`
	StartDate pgtype.Timestamptz `json:"start_date"`
	EndDate   pgtype.Timestamptz `json:"end_date"`
	Limit     int32              `json:"limit"`
	Offset    int32              `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	return queryMany[Order](ctx, q.db, listOrders,
		arg.BranchID, arg.Status, arg.OrderType, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1 AND branch_id = $2
`

type GetOrderParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return queryOne[Order](ctx, q.db, getOrder, arg.ID, arg.BranchID)
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + ` FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	return queryMany[OrderItem](ctx, q.db, listOrderItemsByOrder, orderID)
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND status = $4
RETURNING ` + orderColumns

// UpdateOrderStatusParams carries the status the caller last read; the update
// matches no row if another writer changed it first.
type UpdateOrderStatusParams struct {
	ID            uuid.UUID `json:"id"`
	BranchID      uuid.UUID `json:"branch_id"`
	Status        string    `json:"status"`
	CurrentStatus string    `json:"current_status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return queryOne[Order](ctx, q.db, updateOrderStatus, arg.ID, arg.BranchID, arg.Status, arg.CurrentStatus)
}
