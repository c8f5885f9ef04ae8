package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, branch_id, email, hashed_password, full_name, role, pin, is_active, created_at, updated_at`

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users
WHERE email = $1 AND is_active = true
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return queryOne[User](ctx, q.db, getUserByEmail, email)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return queryOne[User](ctx, q.db, getUserByID, id)
}

const getUserByBranchAndPin = `-- name: GetUserByBranchAndPin :one
SELECT ` + userColumns + ` FROM users
WHERE branch_id = $1 AND pin = $2 AND is_active = true
`

type GetUserByBranchAndPinParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	Pin      pgtype.Text `json:"pin"`
}

func (q *Queries) GetUserByBranchAndPin(ctx context.Context, arg GetUserByBranchAndPinParams) (User, error) {
	return queryOne[User](ctx, q.db, getUserByBranchAndPin, arg.BranchID, arg.Pin)
}

const listUsersByBranch = `-- name: ListUsersByBranch :many
SELECT ` + userColumns + ` FROM users
WHERE branch_id = $1 AND is_active = true
ORDER BY full_name, id
LIMIT $2 OFFSET $3
`

type ListUsersByBranchParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

func (q *Queries) ListUsersByBranch(ctx context.Context, arg ListUsersByBranchParams) ([]User, error) {
	return queryMany[User](ctx, q.db, listUsersByBranch, arg.BranchID, arg.Limit, arg.Offset)
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (branch_id, email, hashed_password, full_name, role, pin)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

type CreateUserParams struct {
	BranchID       uuid.UUID   `json:"branch_id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"hashed_password"`
	FullName       string      `json:"full_name"`
	Role           string      `json:"role"`
	Pin            pgtype.Text `json:"pin"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return queryOne[User](ctx, q.db, createUser,
		arg.BranchID, arg.Email, arg.HashedPassword, arg.FullName, arg.Role, arg.Pin)
}

const updateUser = `-- name: UpdateUser :one
UPDATE users
SET email = $3, full_name = $4, role = $5, pin = $6, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID       uuid.UUID   `json:"id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     string      `json:"role"`
	Pin      pgtype.Text `json:"pin"`
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return queryOne[User](ctx, q.db, updateUser,
		arg.ID, arg.BranchID, arg.Email, arg.FullName, arg.Role, arg.Pin)
}

const softDeleteUser = `-- name: SoftDeleteUser :one
UPDATE users SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteUserParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) SoftDeleteUser(ctx context.Context, arg SoftDeleteUserParams) (uuid.UUID, error) {
	return queryID(ctx, q.db, softDeleteUser, arg.ID, arg.BranchID)
}
