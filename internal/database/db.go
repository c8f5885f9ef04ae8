// Package database holds the row models and queries for the back-office
// schema. Queries follow sqlc's layout: one constant per statement, a Params
// struct when there is more than one argument, and a method on *Queries.
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// WithTx returns a copy of q that runs every statement inside tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

func queryOne[T any](ctx context.Context, db DBTX, sql string, args ...interface{}) (T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
}

func queryMany[T any](ctx context.Context, db DBTX, sql string, args ...interface{}) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

func queryID(ctx context.Context, db DBTX, sql string, args ...interface{}) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, sql, args...).Scan(&id)
	return id, err
}
