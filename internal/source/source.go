// Package source builds pager.FetchFunc values from the places rows actually
// live: in-memory slices, limit/offset SQL queries and the HTTP API.
package source

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/kiwari-pos/backoffice/internal/pager"
)

// ErrOffsetRange is returned by FromQuery for a page whose row offset does not
// fit the query's int32 OFFSET.
var ErrOffsetRange = errors.New("source: page offset out of int32 range")

// QueryFunc is a limit/offset list query, the shape of every List* method in
// internal/database.
type QueryFunc[T any] func(ctx context.Context, limit, offset int32) ([]T, error)

// Offset converts a 1-based page number into a row offset.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// FromSlice pages through a fixed slice.
func FromSlice[T any](rows []T) pager.FetchFunc[T] {
	return func(ctx context.Context, page, pageSize int) ([]T, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := Offset(page, pageSize)
		if start >= len(rows) {
			return []T{}, nil
		}
		end := min(start+pageSize, len(rows))
		out := make([]T, end-start)
		copy(out, rows[start:end])
		return out, nil
	}
}

// FromQuery adapts a limit/offset query.
func FromQuery[T any](q QueryFunc[T]) pager.FetchFunc[T] {
	return func(ctx context.Context, page, pageSize int) ([]T, error) {
		if pageSize <= 0 || pageSize > math.MaxInt32 || max(page, 1)-1 > math.MaxInt32/pageSize {
			return nil, ErrOffsetRange
		}
		return q(ctx, int32(pageSize), int32(Offset(page, pageSize)))
	}
}

// Map converts each fetched row with fn.
func Map[In, Out any](fetch pager.FetchFunc[In], fn func(In) Out) pager.FetchFunc[Out] {
	return func(ctx context.Context, page, pageSize int) ([]Out, error) {
		rows, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		out := make([]Out, len(rows))
		for i, r := range rows {
			out[i] = fn(r)
		}
		return out, nil
	}
}

// WithTimeout bounds every fetch call. The controller itself imposes no
// timeout, so a hung source would otherwise leave it loading forever.
func WithTimeout[T any](fetch pager.FetchFunc[T], d time.Duration) pager.FetchFunc[T] {
	return func(ctx context.Context, page, pageSize int) ([]T, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fetch(ctx, page, pageSize)
	}
}

// WithLatency delays every fetch by d, honouring cancellation. Used for demo
// data sources that stand in for a remote service.
func WithLatency[T any](fetch pager.FetchFunc[T], d time.Duration) pager.FetchFunc[T] {
	return func(ctx context.Context, page, pageSize int) ([]T, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
		return fetch(ctx, page, pageSize)
	}
}
