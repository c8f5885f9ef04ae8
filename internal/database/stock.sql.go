package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const stockAdjustmentColumns = `id, branch_id, inventory_item_id, quantity_delta, stock_after, reason, notes, created_by, created_at`

const stockCountColumns = `id, branch_id, inventory_item_id, expected_quantity, counted_quantity, notes, counted_by, counted_at`

const createStockAdjustment = `-- name: CreateStockAdjustment :one
INSERT INTO stock_adjustments (branch_id, inventory_item_id, quantity_delta, stock_after, reason, notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + stockAdjustmentColumns

type CreateStockAdjustmentParams struct {
	BranchID        uuid.UUID      `json:"branch_id"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	QuantityDelta   pgtype.Numeric `json:"quantity_delta"`
	StockAfter      pgtype.Numeric `json:"stock_after"`
	Reason          string         `json:"reason"`
	Notes           pgtype.Text    `json:"notes"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateStockAdjustment(ctx context.Context, arg CreateStockAdjustmentParams) (StockAdjustment, error) {
	return queryOne[StockAdjustment](ctx, q.db, createStockAdjustment,
		arg.BranchID, arg.InventoryItemID, arg.QuantityDelta, arg.StockAfter, arg.Reason, arg.Notes, arg.CreatedBy)
}

const listStockAdjustments = `-- name: ListStockAdjustments :many
SELECT sa.id, sa.inventory_item_id, ii.name AS item_name, ii.unit, sa.quantity_delta,
       sa.stock_after, sa.reason, sa.notes, sa.created_by, sa.created_at
FROM stock_adjustments sa
JOIN inventory_items ii ON ii.id = sa.inventory_item_id
WHERE sa.branch_id = $1
  AND ($2::uuid IS NULL OR sa.inventory_item_id = $2)
  AND ($3::text IS NULL OR ii.name ILIKE '%' || $3 || '%')
ORDER BY sa.created_at DESC, sa.id
LIMIT $4 OFFSET $5
`

type ListStockAdjustmentsParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	InventoryItemID pgtype.UUID `json:"inventory_item_id"`
	Search          pgtype.Text `json:"search"`
	Limit           int32       `json:"limit"`
	Offset          int32       `json:"offset"`
}

type ListStockAdjustmentsRow struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	InventoryItemID uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	ItemName        string         `db:"item_name" json:"item_name"`
	Unit            string         `db:"unit" json:"unit"`
	QuantityDelta   pgtype.Numeric `db:"quantity_delta" json:"quantity_delta"`
	StockAfter      pgtype.Numeric `db:"stock_after" json:"stock_after"`
	Reason          string         `db:"reason" json:"reason"`
	Notes           pgtype.Text    `db:"notes" json:"notes"`
	CreatedBy       uuid.UUID      `db:"created_by" json:"created_by"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

func (q *Queries) ListStockAdjustments(ctx context.Context, arg ListStockAdjustmentsParams) ([]ListStockAdjustmentsRow, error) {
	return queryMany[ListStockAdjustmentsRow](ctx, q.db, listStockAdjustments,
		arg.BranchID, arg.InventoryItemID, arg.Search, arg.Limit, arg.Offset)
}

const createStockCount = `-- name: CreateStockCount :one
INSERT INTO stock_counts (branch_id, inventory_item_id, expected_quantity, counted_quantity, notes, counted_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + stockCountColumns

type CreateStockCountParams struct {
	BranchID         uuid.UUID      `json:"branch_id"`
	InventoryItemID  uuid.UUID      `json:"inventory_item_id"`
	ExpectedQuantity pgtype.Numeric `json:"expected_quantity"`
	CountedQuantity  pgtype.Numeric `json:"counted_quantity"`
	Notes            pgtype.Text    `json:"notes"`
	CountedBy        uuid.UUID      `json:"counted_by"`
}

func (q *Queries) CreateStockCount(ctx context.Context, arg CreateStockCountParams) (StockCount, error) {
	return queryOne[StockCount](ctx, q.db, createStockCount,
		arg.BranchID, arg.InventoryItemID, arg.ExpectedQuantity, arg.CountedQuantity, arg.Notes, arg.CountedBy)
}

const listStockCountsForVariance = `-- name: ListStockCountsForVariance :many
SELECT sc.id, sc.inventory_item_id, ii.name AS item_name, ii.unit, sc.expected_quantity,
       sc.counted_quantity, sc.notes, sc.counted_at
FROM stock_counts sc
JOIN inventory_items ii ON ii.id = sc.inventory_item_id
WHERE sc.branch_id = $1 AND sc.counted_at >= $2 AND sc.counted_at < $3
ORDER BY sc.counted_at DESC, sc.id
LIMIT $4 OFFSET $5
`

type ListStockCountsForVarianceParams struct {
	BranchID  uuid.UUID `json:"branch_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Limit     int32     `json:"limit"`
	Offset    int32     `json:"offset"`
}

type ListStockCountsForVarianceRow struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	InventoryItemID  uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	ItemName         string         `db:"item_name" json:"item_name"`
	Unit             string         `db:"unit" json:"unit"`
	ExpectedQuantity pgtype.Numeric `db:"expected_quantity" json:"expected_quantity"`
	CountedQuantity  pgtype.Numeric `db:"counted_quantity" json:"counted_quantity"`
	Notes            pgtype.Text    `db:"notes" json:"notes"`
	CountedAt        time.Time      `db:"counted_at" json:"counted_at"`
}

func (q *Queries) ListStockCountsForVariance(ctx context.Context, arg ListStockCountsForVarianceParams) ([]ListStockCountsForVarianceRow, error) {
	return queryMany[ListStockCountsForVarianceRow](ctx, q.db, listStockCountsForVariance,
		arg.BranchID, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
}

const sumStockCounts = `-- name: SumStockCounts :one
SELECT COUNT(*) AS count_total,
       COALESCE(SUM(expected_quantity), 0)::numeric AS total_expected,
       COALESCE(SUM(counted_quantity), 0)::numeric AS total_counted
FROM stock_counts
WHERE branch_id = $1 AND counted_at >= $2 AND counted_at < $3
`

type SumStockCountsParams struct {
	BranchID  uuid.UUID `json:"branch_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type SumStockCountsRow struct {
	CountTotal    int64          `db:"count_total" json:"count_total"`
	TotalExpected pgtype.Numeric `db:"total_expected" json:"total_expected"`
	TotalCounted  pgtype.Numeric `db:"total_counted" json:"total_counted"`
}

func (q *Queries) SumStockCounts(ctx context.Context, arg SumStockCountsParams) (SumStockCountsRow, error) {
	return queryOne[SumStockCountsRow](ctx, q.db, sumStockCounts, arg.BranchID, arg.StartDate, arg.EndDate)
}

const countStockCountsWithVariance = `-- name: CountStockCountsWithVariance :one
SELECT COUNT(*) FROM stock_counts
WHERE branch_id = $1 AND counted_at >= $2 AND counted_at < $3
  AND counted_quantity <> expected_quantity
`

func (q *Queries) CountStockCountsWithVariance(ctx context.Context, arg SumStockCountsParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countStockCountsWithVariance, arg.BranchID, arg.StartDate, arg.EndDate).Scan(&n)
	return n, err
}
