package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const dealColumns = `id, branch_id, name, description, discount_type, discount_value, starts_at, ends_at, is_active, created_at, updated_at`

const listDeals = `-- name: ListDeals :many
SELECT ` + dealColumns + ` FROM deals
WHERE branch_id = $1
ORDER BY starts_at DESC, id
LIMIT $2 OFFSET $3
`

type ListDealsParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListDeals(ctx context.Context, arg ListDealsParams) ([]Deal, error) {
	return queryMany[Deal](ctx, q.db, listDeals, arg.BranchID, arg.Limit, arg.Offset)
}

const listActiveDeals = `-- name: ListActiveDeals :many
SELECT ` + dealColumns + ` FROM deals
WHERE branch_id = $1 AND is_active = true AND starts_at <= $2 AND ends_at > $2
ORDER BY ends_at, id
LIMIT $3 OFFSET $4
`

type ListActiveDealsParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	At       time.Time `json:"at"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListActiveDeals(ctx context.Context, arg ListActiveDealsParams) ([]Deal, error) {
	return queryMany[Deal](ctx, q.db, listActiveDeals, arg.BranchID, arg.At, arg.Limit, arg.Offset)
}

const getDeal = `-- name: GetDeal :one
SELECT ` + dealColumns + ` FROM deals
WHERE id = $1 AND branch_id = $2
`

type GetDealParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetDeal(ctx context.Context, arg GetDealParams) (Deal, error) {
	return queryOne[Deal](ctx, q.db, getDeal, arg.ID, arg.BranchID)
}

const createDeal = `-- name: CreateDeal :one
INSERT INTO deals (branch_id, name, description, discount_type, discount_value, starts_at, ends_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + dealColumns

type CreateDealParams struct {
	BranchID      uuid.UUID      `json:"branch_id"`
	Name          string         `json:"name"`
	Description   pgtype.Text    `json:"description"`
	DiscountType  string         `json:"discount_type"`
	DiscountValue pgtype.Numeric `json:"discount_value"`
	StartsAt      time.Time      `json:"starts_at"`
	EndsAt        time.Time      `json:"ends_at"`
	IsActive      bool           `json:"is_active"`
}

func (q *Queries) CreateDeal(ctx context.Context, arg CreateDealParams) (Deal, error) {
	return queryOne[Deal](ctx, q.db, createDeal,
		arg.BranchID, arg.Name, arg.Description, arg.DiscountType, arg.DiscountValue,
		arg.StartsAt, arg.EndsAt, arg.IsActive)
}

const updateDeal = `-- name: UpdateDeal :one
UPDATE deals
SET name = $3, description = $4, discount_type = $5, discount_value = $6,
    starts_at = $7, ends_at = $8, is_active = $9, updated_at = now()
WHERE id = $1 AND branch_id = $2
RETURNING ` + dealColumns

type UpdateDealParams struct {
	ID            uuid.UUID      `json:"id"`
	BranchID      uuid.UUID      `json:"branch_id"`
	Name          string         `json:"name"`
	Description   pgtype.Text    `json:"description"`
	DiscountType  string         `json:"discount_type"`
	DiscountValue pgtype.Numeric `json:"discount_value"`
	StartsAt      time.Time      `json:"starts_at"`
	EndsAt        time.Time      `json:"ends_at"`
	IsActive      bool           `json:"is_active"`
}

func (q *Queries) UpdateDeal(ctx context.Context, arg UpdateDealParams) (Deal, error) {
	return queryOne[Deal](ctx, q.db, updateDeal,
		arg.ID, arg.BranchID, arg.Name, arg.Description, arg.DiscountType, arg.DiscountValue,
		arg.StartsAt, arg.EndsAt, arg.IsActive)
}

const deleteDeal = `-- name: DeleteDeal :one
DELETE FROM deals
WHERE id = $1 AND branch_id = $2
RETURNING id
`

type DeleteDealParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeleteDeal(ctx context.Context, arg DeleteDealParams) (uuid.UUID, error) {
	return queryID(ctx, q.db, deleteDeal, arg.ID, arg.BranchID)
}
