package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const purchaseOrderColumns = `id, branch_id, po_number, supplier_name, status, subtotal, discount_amount, tax_amount, net_cost, notes, expected_date, created_by, created_at, updated_at`

const purchaseOrderLineColumns = `id, purchase_order_id, inventory_item_id, quantity, unit_cost, line_total, received_quantity`

const getNextPONumber = `-- name: GetNextPONumber :one
SELECT (COALESCE(MAX(NULLIF(regexp_replace(po_number, '\D', '', 'g'), '')::int), 0) + 1)::int
FROM purchase_orders
WHERE branch_id = $1
`

func (q *Queries) GetNextPONumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, getNextPONumber, branchID).Scan(&next)
	return next, err
}

const createPurchaseOrder = `-- name: CreatePurchaseOrder :one
INSERT INTO purchase_orders (
    branch_id, po_number, supplier_name, subtotal, discount_amount, tax_amount, net_cost,
    notes, expected_date, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + purchaseOrderColumns

type CreatePurchaseOrderParams struct {
	BranchID       uuid.UUID      `json:"branch_id"`
	PoNumber       string         `json:"po_number"`
	SupplierName   string         `json:"supplier_name"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
	DiscountAmount pgtype.Numeric `json:"discount_amount"`
	TaxAmount      pgtype.Numeric `json:"tax_amount"`
	NetCost        pgtype.Numeric `json:"net_cost"`
	Notes          pgtype.Text    `json:"notes"`
	ExpectedDate   pgtype.Date    `json:"expected_date"`
	CreatedBy      uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreatePurchaseOrder(ctx context.Context, arg CreatePurchaseOrderParams) (PurchaseOrder, error) {
	return queryOne[PurchaseOrder](ctx, q.db, createPurchaseOrder,
		arg.BranchID, arg.PoNumber, arg.SupplierName, arg.Subtotal, arg.DiscountAmount, arg.TaxAmount,
		arg.NetCost, arg.Notes, arg.ExpectedDate, arg.CreatedBy)
}

const createPurchaseOrderLine = `-- name: CreatePurchaseOrderLine :one
INSERT INTO purchase_order_lines (purchase_order_id, inventory_item_id, quantity, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + purchaseOrderLineColumns

type CreatePurchaseOrderLineParams struct {
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	Quantity        pgtype.Numeric `json:"quantity"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	LineTotal       pgtype.Numeric `json:"line_total"`
}

func (q *Queries) CreatePurchaseOrderLine(ctx context.Context, arg CreatePurchaseOrderLineParams) (PurchaseOrderLine, error) {
	return queryOne[PurchaseOrderLine](ctx, q.db, createPurchaseOrderLine,
		arg.PurchaseOrderID, arg.InventoryItemID, arg.Quantity, arg.UnitCost, arg.LineTotal)
}

const listPurchaseOrders = `-- name: ListPurchaseOrders :many
SELECT ` + purchaseOrderColumns + ` FROM purchase_orders
WHERE branch_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR supplier_name ILIKE '%' || $3 || '%' OR po_number ILIKE '%' || $3 || '%')
ORDER BY created_at DESC, id
LIMIT $4 OFFSET $5
`

type ListPurchaseOrdersParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	Status   pgtype.Text `json:"status"`
	Search   pgtype.Text `json:"search"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListPurchaseOrders(ctx context.Context, arg ListPurchaseOrdersParams) ([]PurchaseOrder, error) {
	return queryMany[PurchaseOrder](ctx, q.db, listPurchaseOrders,
		arg.BranchID, arg.Status, arg.Search, arg.Limit, arg.Offset)
}

const getPurchaseOrder = `-- name: GetPurchaseOrder :one
SELECT ` + purchaseOrderColumns + ` FROM purchase_orders
WHERE id = $1 AND branch_id = $2
`

type GetPurchaseOrderParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetPurchaseOrder(ctx context.Context, arg GetPurchaseOrderParams) (PurchaseOrder, error) {
	return queryOne[PurchaseOrder](ctx, q.db, getPurchaseOrder, arg.ID, arg.BranchID)
}

const getPurchaseOrderForUpdate = `-- name: GetPurchaseOrderForUpdate :one
SELECT ` + purchaseOrderColumns + ` FROM purchase_orders
WHERE id = $1 AND branch_id = $2
FOR UPDATE
`

func (q *Queries) GetPurchaseOrderForUpdate(ctx context.Context, arg GetPurchaseOrderParams) (PurchaseOrder, error) {
	return queryOne[PurchaseOrder](ctx, q.db, getPurchaseOrderForUpdate, arg.ID, arg.BranchID)
}

const listPurchaseOrderLines = `-- name: ListPurchaseOrderLines :many
SELECT ` + purchaseOrderLineColumns + ` FROM purchase_order_lines
WHERE purchase_order_id = $1
ORDER BY id
`

func (q *Queries) ListPurchaseOrderLines(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseOrderLine, error) {
	return queryMany[PurchaseOrderLine](ctx, q.db, listPurchaseOrderLines, purchaseOrderID)
}

const updatePurchaseOrderStatus = `-- name: UpdatePurchaseOrderStatus :one
UPDATE purchase_orders SET status = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND status = $4
RETURNING ` + purchaseOrderColumns

type UpdatePurchaseOrderStatusParams struct {
	ID            uuid.UUID `json:"id"`
	BranchID      uuid.UUID `json:"branch_id"`
	Status        string    `json:"status"`
	CurrentStatus string    `json:"current_status"`
}

func (q *Queries) UpdatePurchaseOrderStatus(ctx context.Context, arg UpdatePurchaseOrderStatusParams) (PurchaseOrder, error) {
	return queryOne[PurchaseOrder](ctx, q.db, updatePurchaseOrderStatus,
		arg.ID, arg.BranchID, arg.Status, arg.CurrentStatus)
}

const addReceivedQuantity = `-- name: AddReceivedQuantity :one
UPDATE purchase_order_lines
SET received_quantity = received_quantity + $2
WHERE id = $1 AND received_quantity + $2 <= quantity
RETURNING ` + purchaseOrderLineColumns

type AddReceivedQuantityParams struct {
	ID       uuid.UUID      `json:"id"`
	Quantity pgtype.Numeric `json:"quantity"`
}

func (q *Queries) AddReceivedQuantity(ctx context.Context, arg AddReceivedQuantityParams) (PurchaseOrderLine, error) {
	return queryOne[PurchaseOrderLine](ctx, q.db, addReceivedQuantity, arg.ID, arg.Quantity)
}
