package valueobject

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept when money is persisted.
const MoneyScale = 8

// CentTolerance is the largest difference treated as equal when two amounts
// are compared for reconciliation purposes.
var CentTolerance = decimal.New(1, -2)

// PerThousand converts a unit quantity to thousands (the CPM basis) exactly.
func PerThousand(quantity int64) decimal.Decimal {
	return decimal.New(quantity, -3)
}

// ExtendCPM returns cpm × quantityInThousands.
func ExtendCPM(cpm, quantityInThousands decimal.Decimal) decimal.Decimal {
	return cpm.Mul(quantityInThousands)
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Normalize truncates to the persisted scale so in-memory and stored values agree.
func Normalize(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// WithinTolerance reports whether |a-b| <= tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// FormatCents renders an amount with exactly two decimals.
func FormatCents(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
