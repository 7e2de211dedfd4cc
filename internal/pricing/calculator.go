// Package pricing computes order totals from cart contents. It is pure
// arithmetic: no state, no side effects, same input same output.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// Compute derives subtotal, tax and total from the cart snapshot and an
// injected tax rate. Tax is rounded half-up to 2 decimal places; the
// subtotal is an exact sum and needs no rounding.
func Compute(items []domain.CartItem, taxRate decimal.Decimal) domain.PricingBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(taxRate).Round(2)

	return domain.PricingBreakdown{
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
