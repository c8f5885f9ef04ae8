package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const categoryColumns = `id, branch_id, name, description, sort_order, is_active, created_at`

const listCategoriesByBranch = `-- name: ListCategoriesByBranch :many
SELECT ` + categoryColumns + ` FROM categories
WHERE branch_id = $1 AND is_active = true
ORDER BY sort_order, name, id
LIMIT $2 OFFSET $3
`

type ListCategoriesByBranchParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListCategoriesByBranch(ctx context.Context, arg ListCategoriesByBranchParams) ([]Category, error) {
	return queryMany[Category](ctx, q.db, listCategoriesByBranch, arg.BranchID, arg.Limit, arg.Offset)
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM categories
WHERE id = $1 AND branch_id = $2 AND is_active = true
`

type GetCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetCategory(ctx context.Context, arg GetCategoryParams) (Category, error) {
	return queryOne[Category](ctx, q.db, getCategory, arg.ID, arg.BranchID)
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (branch_id, name, description, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	BranchID    uuid.UUID   `json:"branch_id"`
	Name        string      `json:"name"`
	Description pgtype.Text `json:"description"`
	SortOrder   int32       `json:"sort_order"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	return queryOne[Category](ctx, q.db, createCategory, arg.BranchID, arg.Name, arg.Description, arg.SortOrder)
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories
SET name = $3, description = $4, sort_order = $5
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID          uuid.UUID   `json:"id"`
	BranchID    uuid.UUID   `json:"branch_id"`
	Name        string      `json:"name"`
	Description pgtype.Text `json:"description"`
	SortOrder   int32       `json:"sort_order"`
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	return queryOne[Category](ctx, q.db, updateCategory,
		arg.ID, arg.BranchID, arg.Name, arg.Description, arg.SortOrder)
}

const softDeleteCategory = `-- name: SoftDeleteCategory :one
UPDATE categories SET is_active = false
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) SoftDeleteCategory(ctx context.Context, arg SoftDeleteCategoryParams) (uuid.UUID, error) {
	return queryID(ctx, q.db, softDeleteCategory, arg.ID, arg.BranchID)
}
