// Package money holds the currency tags and conversions used by the cost ledger.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	USD Currency = "USD"
	MXN Currency = "MXN"
)

func (c Currency) Valid() bool { return c == USD || c == MXN }

// ParseCurrency normalizes case; an empty string yields def.
func ParseCurrency(s string, def Currency) (Currency, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def, true
	}
	c := Currency(s)
	return c, c.Valid()
}

// ToUSD converts amount to USD using a USD->MXN rate. ok is false when amount
// is in MXN and no usable rate is available.
func ToUSD(amount decimal.Decimal, c Currency, usdToMXN decimal.NullDecimal) (usd decimal.Decimal, ok bool) {
	switch c {
	case USD, "":
		return amount, true
	case MXN:
		if !usdToMXN.Valid || !usdToMXN.Decimal.IsPositive() {
			return decimal.Zero, false
		}
		return amount.Div(usdToMXN.Decimal).Round(2), true
	default:
		return decimal.Zero, false
	}
}

// Sum adds the valid amounts, treating NULL as zero.
func Sum(amounts ...decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if a.Valid {
			total = total.Add(a.Decimal)
		}
	}
	return total
}

func Null(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NonNegative reports whether a nullable amount is absent or >= 0.
func NonNegative(a decimal.NullDecimal) bool {
	return !a.Valid || !a.Decimal.IsNegative()
}
