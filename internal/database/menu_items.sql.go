package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, branch_id, category_id, name, description, price, station, is_available, is_active, created_at, updated_at`

const listMenuItems = `-- name: ListMenuItems :many
SELECT ` + menuItemColumns + ` FROM menu_items
WHERE branch_id = $1
  AND is_active = true
  AND ($2::uuid IS NULL OR category_id = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
ORDER BY name, id
LIMIT $4 OFFSET $5
`

type ListMenuItemsParams struct {
	BranchID   uuid.UUID   `json:"branch_id"`
	CategoryID pgtype.UUID `json:"category_id"`
	Search     pgtype.Text `json:"search"`
	Limit      int32       `json:"limit"`
	Offset     int32       `json:"offset"`
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	return queryMany[MenuItem](ctx, q.db, listMenuItems,
		arg.BranchID, arg.CategoryID, arg.Search, arg.Limit, arg.Offset)
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT ` + menuItemColumns + ` FROM menu_items
WHERE id = $1 AND branch_id = $2 AND is_active = true
`

type GetMenuItemParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return queryOne[MenuItem](ctx, q.db, getMenuItem, arg.ID, arg.BranchID)
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (branch_id, category_id, name, description, price, station)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	BranchID    uuid.UUID      `json:"branch_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	Station     pgtype.Text    `json:"station"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return queryOne[MenuItem](ctx, q.db, createMenuItem,
		arg.BranchID, arg.CategoryID, arg.Name, arg.Description, arg.Price, arg.Station)
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET category_id = $3, name = $4, description = $5, price = $6, station = $7, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID          uuid.UUID      `json:"id"`
	BranchID    uuid.UUID      `json:"branch_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	Station     pgtype.Text    `json:"station"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return queryOne[MenuItem](ctx, q.db, updateMenuItem,
		arg.ID, arg.BranchID, arg.CategoryID, arg.Name, arg.Description, arg.Price, arg.Station)
}

const setMenuItemAvailability = `-- name: SetMenuItemAvailability :one
UPDATE menu_items SET is_available = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + menuItemColumns

type SetMenuItemAvailabilityParams struct {
	ID          uuid.UUID `json:"id"`
	BranchID    uuid.UUID `json:"branch_id"`
	IsAvailable bool      `json:"is_available"`
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	return queryOne[MenuItem](ctx, q.db, setMenuItemAvailability, arg.ID, arg.BranchID, arg.IsAvailable)
}

const softDeleteMenuItem = `-- name: SoftDeleteMenuItem :one
UPDATE menu_items SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteMenuItemParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) SoftDeleteMenuItem(ctx context.Context, arg SoftDeleteMenuItemParams) (uuid.UUID, error) {
	return queryID(ctx, q.db, softDeleteMenuItem, arg.ID, arg.BranchID)
}
