package database

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ToDecimal converts a NUMERIC column. NULL and NaN become zero.
func ToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// Numeric converts d for use as a NUMERIC parameter.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// FormatNumeric renders n with a fixed number of decimal places, "0.00"-style
// for NULL.
func FormatNumeric(n pgtype.Numeric, places int32) string {
	return ToDecimal(n).StringFixed(places)
}

// Text wraps s as a nullable TEXT value; the empty string is NULL.
func Text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// TextPtr unwraps a nullable TEXT value for JSON responses.
func TextPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
