package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryItemColumns = `id, branch_id, name, unit, current_stock, reorder_level, is_active, created_at, updated_at`

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE branch_id = $1
  AND is_active = true
  AND (NOT $2::bool OR current_stock <= reorder_level)
ORDER BY name, id
LIMIT $3 OFFSET $4
`

type ListInventoryItemsParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	LowStock bool      `json:"low_stock"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListInventoryItems(ctx context.Context, arg ListInventoryItemsParams) ([]InventoryItem, error) {
	return queryMany[InventoryItem](ctx, q.db, listInventoryItems, arg.BranchID, arg.LowStock, arg.Limit, arg.Offset)
}

const getInventoryItem = `-- name: GetInventoryItem :one
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE id = $1 AND branch_id = $2 AND is_active = true
`

type GetInventoryItemParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetInventoryItem(ctx context.Context, arg GetInventoryItemParams) (InventoryItem, error) {
	return queryOne[InventoryItem](ctx, q.db, getInventoryItem, arg.ID, arg.BranchID)
}

const getInventoryItemForUpdate = `-- name: GetInventoryItemForUpdate :one
SELECT ` + inventoryItemColumns + ` FROM inventory_items
WHERE id = $1 AND branch_id = $2 AND is_active = true
FOR UPDATE
`

func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, arg GetInventoryItemParams) (InventoryItem, error) {
	return queryOne[InventoryItem](ctx, q.db, getInventoryItemForUpdate, arg.ID, arg.BranchID)
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory_items (branch_id, name, unit, reorder_level)
VALUES ($1, $2, $3, $4)
RETURNING ` + inventoryItemColumns

type CreateInventoryItemParams struct {
	BranchID     uuid.UUID      `json:"branch_id"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	ReorderLevel pgtype.Numeric `json:"reorder_level"`
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	return queryOne[InventoryItem](ctx, q.db, createInventoryItem, arg.BranchID, arg.Name, arg.Unit, arg.ReorderLevel)
}

const updateInventoryItem = `-- name: UpdateInventoryItem :one
UPDATE inventory_items
SET name = $3, unit = $4, reorder_level = $5, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + inventoryItemColumns

type UpdateInventoryItemParams struct {
	ID           uuid.UUID      `json:"id"`
	BranchID     uuid.UUID      `json:"branch_id"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	ReorderLevel pgtype.Numeric `json:"reorder_level"`
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	return queryOne[InventoryItem](ctx, q.db, updateInventoryItem,
		arg.ID, arg.BranchID, arg.Name, arg.Unit, arg.ReorderLevel)
}

const addInventoryStock = `-- name: AddInventoryStock :one
UPDATE inventory_items
SET current_stock = current_stock + $2, updated_at = now()
WHERE id = $1 AND current_stock + $2 >= 0
RETURNING ` + inventoryItemColumns

// AddInventoryStockParams applies a signed delta. No row is returned when the
// result would be negative.
type AddInventoryStockParams struct {
	ID    uuid.UUID      `json:"id"`
	Delta pgtype.Numeric `json:"delta"`
}

func (q *Queries) AddInventoryStock(ctx context.Context, arg AddInventoryStockParams) (InventoryItem, error) {
	return queryOne[InventoryItem](ctx, q.db, addInventoryStock, arg.ID, arg.Delta)
}
