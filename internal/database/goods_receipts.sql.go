package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const goodsReceiptColumns = `id, branch_id, grn_number, purchase_order_id, notes, received_by, received_at`

const goodsReceiptLineColumns = `id, goods_receipt_id, purchase_order_line_id, inventory_item_id, quantity`

const getNextGRNNumber = `-- name: GetNextGRNNumber :one
SELECT (COALESCE(MAX(NULLIF(regexp_replace(grn_number, '\D', '', 'g'), '')::int), 0) + 1)::int
FROM goods_receipts
WHERE branch_id = $1
`

func (q *Queries) GetNextGRNNumber(ctx context.Context, branchID uuid.UUID) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, getNextGRNNumber, branchID).Scan(&next)
	return next, err
}

const createGoodsReceipt = `-- name: CreateGoodsReceipt :one
INSERT INTO goods_receipts (branch_id, grn_number, purchase_order_id, notes, received_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + goodsReceiptColumns

type CreateGoodsReceiptParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	GrnNumber       string      `json:"grn_number"`
	PurchaseOrderID uuid.UUID   `json:"purchase_order_id"`
	Notes           pgtype.Text `json:"notes"`
	ReceivedBy      uuid.UUID   `json:"received_by"`
}

func (q *Queries) CreateGoodsReceipt(ctx context.Context, arg CreateGoodsReceiptParams) (GoodsReceipt, error) {
	return queryOne[GoodsReceipt](ctx, q.db, createGoodsReceipt,
		arg.BranchID, arg.GrnNumber, arg.PurchaseOrderID, arg.Notes, arg.ReceivedBy)
}

const createGoodsReceiptLine = `-- name: CreateGoodsReceiptLine :one
INSERT INTO goods_receipt_lines (goods_receipt_id, purchase_order_line_id, inventory_item_id, quantity)
VALUES ($1, $2, $3, $4)
RETURNING ` + goodsReceiptLineColumns

type CreateGoodsReceiptLineParams struct {
	GoodsReceiptID      uuid.UUID      `json:"goods_receipt_id"`
	PurchaseOrderLineID uuid.UUID      `json:"purchase_order_line_id"`
	InventoryItemID     uuid.UUID      `json:"inventory_item_id"`
	Quantity            pgtype.Numeric `json:"quantity"`
}

func (q *Queries) CreateGoodsReceiptLine(ctx context.Context, arg CreateGoodsReceiptLineParams) (GoodsReceiptLine, error) {
	return queryOne[GoodsReceiptLine](ctx, q.db, createGoodsReceiptLine,
		arg.GoodsReceiptID, arg.PurchaseOrderLineID, arg.InventoryItemID, arg.Quantity)
}

const listGoodsReceipts = `-- name: ListGoodsReceipts :many
SELECT ` + goodsReceiptColumns + ` FROM goods_receipts
WHERE branch_id = $1
  AND ($2::uuid IS NULL OR purchase_order_id = $2)
ORDER BY received_at DESC, id
LIMIT $3 OFFSET $4
`

type ListGoodsReceiptsParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	PurchaseOrderID pgtype.UUID `json:"purchase_order_id"`
	Limit           int32       `json:"limit"`
	Offset          int32       `json:"offset"`
}

func (q *Queries) ListGoodsReceipts(ctx context.Context, arg ListGoodsReceiptsParams) ([]GoodsReceipt, error) {
	return queryMany[GoodsReceipt](ctx, q.db, listGoodsReceipts,
		arg.BranchID, arg.PurchaseOrderID, arg.Limit, arg.Offset)
}

const getGoodsReceipt = `-- name: GetGoodsReceipt :one
SELECT ` + goodsReceiptColumns + ` FROM goods_receipts
WHERE id = $1 AND branch_id = $2
`

type GetGoodsReceiptParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetGoodsReceipt(ctx context.Context, arg GetGoodsReceiptParams) (GoodsReceipt, error) {
	return queryOne[GoodsReceipt](ctx, q.db, getGoodsReceipt, arg.ID, arg.BranchID)
}

const listGoodsReceiptLines = `-- name: ListGoodsReceiptLines :many
SELECT ` + goodsReceiptLineColumns + ` FROM goods_receipt_lines
WHERE goods_receipt_id = $1
ORDER BY id
`

func (q *Queries) ListGoodsReceiptLines(ctx context.Context, goodsReceiptID uuid.UUID) ([]GoodsReceiptLine, error) {
	return queryMany[GoodsReceiptLine](ctx, q.db, listGoodsReceiptLines, goodsReceiptID)
}
