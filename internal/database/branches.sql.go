package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const branchColumns = `id, name, address, phone, is_active, created_at, updated_at`

const listBranches = `-- name: ListBranches :many
SELECT ` + branchColumns + ` FROM branches
ORDER BY name, id
LIMIT $1 OFFSET $2
`

type ListBranchesParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListBranches(ctx context.Context, arg ListBranchesParams) ([]Branch, error) {
	return queryMany[Branch](ctx, q.db, listBranches, arg.Limit, arg.Offset)
}

const getBranch = `-- name: GetBranch :one
SELECT ` + branchColumns + ` FROM branches
WHERE id = $1
`

func (q *Queries) GetBranch(ctx context.Context, id uuid.UUID) (Branch, error) {
	return queryOne[Branch](ctx, q.db, getBranch, id)
}

const createBranch = `-- name: CreateBranch :one
INSERT INTO branches (name, address, phone)
VALUES ($1, $2, $3)
RETURNING ` + branchColumns

type CreateBranchParams struct {
	Name    string      `json:"name"`
	Address pgtype.Text `json:"address"`
	Phone   pgtype.Text `json:"phone"`
}

func (q *Queries) CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error) {
	return queryOne[Branch](ctx, q.db, createBranch, arg.Name, arg.Address, arg.Phone)
}

const updateBranch = `-- name: UpdateBranch :one
UPDATE branches
SET name = $2, address = $3, phone = $4, updated_at = now()
WHERE id = $1
RETURNING ` + branchColumns

type UpdateBranchParams struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Address pgtype.Text `json:"address"`
	Phone   pgtype.Text `json:"phone"`
}

func (q *Queries) UpdateBranch(ctx context.Context, arg UpdateBranchParams) (Branch, error) {
	return queryOne[Branch](ctx, q.db, updateBranch, arg.ID, arg.Name, arg.Address, arg.Phone)
}

const deactivateBranch = `-- name: DeactivateBranch :one
UPDATE branches SET is_active = false, updated_at = now()
WHERE id = $1 AND is_active = true
RETURNING id
`

func (q *Queries) DeactivateBranch(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return queryID(ctx, q.db, deactivateBranch, id)
}
