// Package service holds the multi-statement business operations that need a
// transaction: order creation, purchasing and goods receipt, stock movements
// and kitchen display defaults.
package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// maxNumberRetries bounds retries of document-number races (orders, POs, GRNs).
const maxNumberRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// IsUniqueViolation reports whether err is a unique violation, optionally on
// a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// retryOnConflict runs fn until it succeeds, fails with something other than
// a violation of constraint, or maxNumberRetries attempts are used up.
func retryOnConflict[T any](constraint string, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsUniqueViolation(err, constraint) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// parseAmount parses a decimal string. Empty input is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
