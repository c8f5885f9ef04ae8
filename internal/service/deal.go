package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/enum"
)

var (
	ErrDealNameRequired     = errors.New("name is required")
	ErrInvalidDiscountType  = errors.New("discount_type must be PERCENTAGE or FIXED_AMOUNT")
	ErrInvalidDiscountValue = errors.New("invalid discount_value")
	ErrInvalidDealWindow    = errors.New("starts_at must be before ends_at")
)

// Deal is a time-boxed discount.
type Deal struct {
	Name          string
	DiscountType  string
	DiscountValue decimal.Decimal
	StartsAt      time.Time
	EndsAt        time.Time
	IsActive      bool
}

// Validate enforces PERCENTAGE in (0, 100], FIXED_AMOUNT > 0 and a
// non-empty window.
func (d Deal) Validate() error {
	if d.Name == "" {
		return ErrDealNameRequired
	}
	switch d.DiscountType {
	case enum.DiscountTypePercentage:
		if !d.DiscountValue.IsPositive() || d.DiscountValue.GreaterThan(hundred) {
			return ErrInvalidDiscountValue
		}
	case enum.DiscountTypeFixed:
		if !d.DiscountValue.IsPositive() {
			return ErrInvalidDiscountValue
		}
	default:
		return ErrInvalidDiscountType
	}
	if !d.StartsAt.Before(d.EndsAt) {
		return ErrInvalidDealWindow
	}
	return nil
}

// ActiveAt reports whether the deal applies at t. The window is half-open.
func (d Deal) ActiveAt(t time.Time) bool {
	return d.IsActive && !t.Before(d.StartsAt) && t.Before(d.EndsAt)
}

// Apply returns amount after the discount, rounded to 2 places and never
// below zero.
func (d Deal) Apply(amount decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	switch d.DiscountType {
	case enum.DiscountTypePercentage:
		off = amount.Mul(d.DiscountValue).Div(hundred)
	case enum.DiscountTypeFixed:
		off = d.DiscountValue
	}
	out := amount.Sub(off)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out.Round(2)
}
