package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testDeal(kind, value string) Deal {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return Deal{
		Name:          "Happy hour",
		DiscountType:  kind,
		DiscountValue: decimal.RequireFromString(value),
		StartsAt:      start,
		EndsAt:        start.Add(2 * time.Hour),
		IsActive:      true,
	}
}

func TestDeal_Validate(t *testing.T) {
	tests := []struct {
		name string
		deal Deal
		want error
	}{
		{"percentage ok", testDeal("PERCENTAGE", "15"), nil},
		{"percentage full", testDeal("PERCENTAGE", "100"), nil},
		{"percentage over", testDeal("PERCENTAGE", "100.01"), ErrInvalidDiscountValue},
		{"percentage zero", testDeal("PERCENTAGE", "0"), ErrInvalidDiscountValue},
		{"fixed ok", testDeal("FIXED_AMOUNT", "5000"), nil},
		{"fixed negative", testDeal("FIXED_AMOUNT", "-1"), ErrInvalidDiscountValue},
		{"unknown type", testDeal("BOGO", "1"), ErrInvalidDiscountType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.deal.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	d := testDeal("FIXED_AMOUNT", "1")
	d.EndsAt = d.StartsAt
	if err := d.Validate(); !errors.Is(err, ErrInvalidDealWindow) {
		t.Errorf("empty window: got %v", err)
	}
	d.Name = ""
	if err := d.Validate(); !errors.Is(err, ErrDealNameRequired) {
		t.Errorf("missing name: got %v", err)
	}
}

func TestDeal_ActiveAt(t *testing.T) {
	d := testDeal("PERCENTAGE", "10")

	if !d.ActiveAt(d.StartsAt) {
		t.Error("window start is inclusive")
	}
	if d.ActiveAt(d.EndsAt) {
		t.Error("window end is exclusive")
	}
	if d.ActiveAt(d.StartsAt.Add(-time.Second)) {
		t.Error("before start should be inactive")
	}
	d.IsActive = false
	if d.ActiveAt(d.StartsAt.Add(time.Minute)) {
		t.Error("disabled deal should never be active")
	}
}

func TestDeal_Apply(t *testing.T) {
	amount := decimal.RequireFromString("45000")

	if got := testDeal("PERCENTAGE", "15").Apply(amount); !got.Equal(decimal.RequireFromString("38250")) {
		t.Errorf("percentage: got %s, want 38250", got)
	}
	if got := testDeal("PERCENTAGE", "33.333").Apply(decimal.RequireFromString("100")); !got.Equal(decimal.RequireFromString("66.67")) {
		t.Errorf("rounded percentage: got %s, want 66.67", got)
	}
	if got := testDeal("FIXED_AMOUNT", "5000").Apply(amount); !got.Equal(decimal.RequireFromString("40000")) {
		t.Errorf("fixed: got %s, want 40000", got)
	}
	if got := testDeal("FIXED_AMOUNT", "50000").Apply(amount); !got.IsZero() {
		t.Errorf("fixed clamp: got %s, want 0", got)
	}
}
