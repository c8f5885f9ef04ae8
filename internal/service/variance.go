package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kiwari-pos/backoffice/internal/database"
)

var hundred = decimal.NewFromInt(100)

// Variance returns counted − expected and that difference as a percentage of
// expected, both rounded to 2 places. The percentage is 0 when nothing was
// expected.
func Variance(expected, counted decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	v := counted.Sub(expected)
	if expected.IsZero() {
		return v.Round(2), decimal.Zero
	}
	return v.Round(2), v.Div(expected).Mul(hundred).Round(2)
}

// VarianceStore defines the read queries behind the variance report.
type VarianceStore interface {
	ListStockCountsForVariance(ctx context.Context, arg database.ListStockCountsForVarianceParams) ([]database.ListStockCountsForVarianceRow, error)
	SumStockCounts(ctx context.Context, arg database.SumStockCountsParams) (database.SumStockCountsRow, error)
	CountStockCountsWithVariance(ctx context.Context, arg database.SumStockCountsParams) (int64, error)
}

type VarianceLine struct {
	ID               uuid.UUID
	InventoryItemID  uuid.UUID
	ItemName         string
	Unit             string
	ExpectedQuantity decimal.Decimal
	CountedQuantity  decimal.Decimal
	Variance         decimal.Decimal
	VariancePct      decimal.Decimal
	Notes            *string
	CountedAt        time.Time
}

type VarianceTotals struct {
	Counts        int64
	WithVariance  int64
	TotalExpected decimal.Decimal
	TotalCounted  decimal.Decimal
	Variance      decimal.Decimal
	VariancePct   decimal.Decimal
}

type VarianceReport struct {
	Lines  []VarianceLine
	Totals VarianceTotals
}

type VarianceQuery struct {
	BranchID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Limit     int32
	Offset    int32
}

// BuildVarianceReport loads one page of counts and the period totals
// concurrently.
func BuildVarianceReport(ctx context.Context, store VarianceStore, q VarianceQuery) (*VarianceReport, error) {
	period := database.SumStockCountsParams{BranchID: q.BranchID, StartDate: q.StartDate, EndDate: q.EndDate}

	var (
		rows     []database.ListStockCountsForVarianceRow
		sums     database.SumStockCountsRow
		variants int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = store.ListStockCountsForVariance(gctx, database.ListStockCountsForVarianceParams{
			BranchID: q.BranchID, StartDate: q.StartDate, EndDate: q.EndDate, Limit: q.Limit, Offset: q.Offset,
		})
		if err != nil {
			return fmt.Errorf("list stock counts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sums, err = store.SumStockCounts(gctx, period)
		if err != nil {
			return fmt.Errorf("sum stock counts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		variants, err = store.CountStockCountsWithVariance(gctx, period)
		if err != nil {
			return fmt.Errorf("count variances: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &VarianceReport{Lines: make([]VarianceLine, len(rows))}
	for i, r := range rows {
		expected := database.ToDecimal(r.ExpectedQuantity)
		counted := database.ToDecimal(r.CountedQuantity)
		v, pct := Variance(expected, counted)
		report.Lines[i] = VarianceLine{
			ID:               r.ID,
			InventoryItemID:  r.InventoryItemID,
			ItemName:         r.ItemName,
			Unit:             r.Unit,
			ExpectedQuantity: expected,
			CountedQuantity:  counted,
			Variance:         v,
			VariancePct:      pct,
			Notes:            database.TextPtr(r.Notes),
			CountedAt:        r.CountedAt,
		}
	}

	totalExpected := database.ToDecimal(sums.TotalExpected)
	totalCounted := database.ToDecimal(sums.TotalCounted)
	v, pct := Variance(totalExpected, totalCounted)
	report.Totals = VarianceTotals{
		Counts:        sums.CountTotal,
		WithVariance:  variants,
		TotalExpected: totalExpected,
		TotalCounted:  totalCounted,
		Variance:      v,
		VariancePct:   pct,
	}
	return report, nil
}
