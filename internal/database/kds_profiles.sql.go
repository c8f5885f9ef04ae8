package database

import (
	"context"

	"github.com/google/uuid"
)

const kdsProfileColumns = `id, branch_id, name, stations, order_types, show_modifiers, alert_after_minutes, is_default, created_at, updated_at`

const listKDSProfiles = `-- name: ListKDSProfiles :many
SELECT ` + kdsProfileColumns + ` FROM kds_profiles
WHERE branch_id = $1
ORDER BY is_default DESC, name, id
LIMIT $2 OFFSET $3
`

type ListKDSProfilesParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListKDSProfiles(ctx context.Context, arg ListKDSProfilesParams) ([]KdsProfile, error) {
	return queryMany[KdsProfile](ctx, q.db, listKDSProfiles, arg.BranchID, arg.Limit, arg.Offset)
}

const getKDSProfile = `-- name: GetKDSProfile :one
SELECT ` + kdsProfileColumns + ` FROM kds_profiles
WHERE id = $1 AND branch_id = $2
`

type GetKDSProfileParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetKDSProfile(ctx context.Context, arg GetKDSProfileParams) (KdsProfile, error) {
	return queryOne[KdsProfile](ctx, q.db, getKDSProfile, arg.ID, arg.BranchID)
}

const createKDSProfile = `-- name: CreateKDSProfile :one
INSERT INTO kds_profiles (branch_id, name, stations, order_types, show_modifiers, alert_after_minutes, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + kdsProfileColumns

type CreateKDSProfileParams struct {
	BranchID          uuid.UUID `json:"branch_id"`
	Name              string    `json:"name"`
	Stations          []string  `json:"stations"`
	OrderTypes        []string  `json:"order_types"`
	ShowModifiers     bool      `json:"show_modifiers"`
	AlertAfterMinutes int32     `json:"alert_after_minutes"`
	IsDefault         bool      `json:"is_default"`
}

func (q *Queries) CreateKDSProfile(ctx context.Context, arg CreateKDSProfileParams) (KdsProfile, error) {
	return queryOne[KdsProfile](ctx, q.db, createKDSProfile,
		arg.BranchID, arg.Name, arg.Stations, arg.OrderTypes, arg.ShowModifiers, arg.AlertAfterMinutes, arg.IsDefault)
}

const updateKDSProfile = `-- name: UpdateKDSProfile :one
UPDATE kds_profiles
SET name = $3, stations = $4, order_types = $5, show_modifiers = $6,
    alert_after_minutes = $7, is_default = $8, updated_at = now()
WHERE id = $1 AND branch_id = $2
RETURNING ` + kdsProfileColumns

type UpdateKDSProfileParams struct {
	ID                uuid.UUID `json:"id"`
	BranchID          uuid.UUID `json:"branch_id"`
	Name              string    `json:"name"`
	Stations          []string  `json:"stations"`
	OrderTypes        []string  `json:"order_types"`
	ShowModifiers     bool      `json:"show_modifiers"`
	AlertAfterMinutes int32     `json:"alert_after_minutes"`
	IsDefault         bool      `json:"is_default"`
}

func (q *Queries) UpdateKDSProfile(ctx context.Context, arg UpdateKDSProfileParams) (KdsProfile, error) {
	return queryOne[KdsProfile](ctx, q.db, updateKDSProfile,
		arg.ID, arg.BranchID, arg.Name, arg.Stations, arg.OrderTypes, arg.ShowModifiers,
		arg.AlertAfterMinutes, arg.IsDefault)
}

const clearDefaultKDSProfile = `-- name: ClearDefaultKDSProfile :exec
UPDATE kds_profiles SET is_default = false, updated_at = now()
WHERE branch_id = $1 AND is_default = true
`

func (q *Queries) ClearDefaultKDSProfile(ctx context.Context, branchID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearDefaultKDSProfile, branchID)
	return err
}

const deleteKDSProfile = `-- name: DeleteKDSProfile :one
DELETE FROM kds_profiles
WHERE id = $1 AND branch_id = $2
RETURNING id
`

type DeleteKDSProfileParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeleteKDSProfile(ctx context.Context, arg DeleteKDSProfileParams) (uuid.UUID, error) {
	return queryID(ctx, q.db, deleteKDSProfile, arg.ID, arg.BranchID)
}
