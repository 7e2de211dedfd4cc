package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// taxLineName is the synthetic line item carrying sales tax, billed as a
// regular line so hosted pages show it to the shopper.
const taxLineName = "Sales Tax"

var oneHundred = decimal.NewFromInt(100)

// Builder maps a cart snapshot plus the shopper's form into a normalized
// order. Price-to-minor-unit rounding happens here, once, so every adapter
// bills exactly the same amounts.
type Builder struct {
	successURL string
	cancelURL  string
}

func NewBuilder(successURL, cancelURL string) *Builder {
	return &Builder{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Build validates input and constructs a fresh normalized order with a new
// idempotency key. An order is built once per checkout attempt; retrying the
// identical attempt must resend this order, not build a new one, so the
// provider can deduplicate on the key.
func (b *Builder) Build(items []domain.CartItem, customer domain.CustomerInfo, breakdown domain.PricingBreakdown) (*domain.NormalizedOrder, error) {
	if len(items) == 0 {
		return nil, NewValidationError("cart is empty, nothing to checkout")
	}
	if err := customer.Validate(); err != nil {
		return nil, NewValidationError("invalid customer info: %v", err)
	}

	lines := make([]domain.OrderLine, 0, len(items)+1)
	for _, item := range items {
		lines = append(lines, domain.OrderLine{
			Name:                 item.Title,
			UnitAmountMinorUnits: minorUnits(item.Price),
			Quantity:             item.Quantity,
		})
	}

	taxMinor := minorUnits(breakdown.Tax)
	if taxMinor > 0 {
		lines = append(lines, domain.OrderLine{
			Name:                 taxLineName,
			UnitAmountMinorUnits: taxMinor,
			Quantity:             1,
		})
	}

	return &domain.NormalizedOrder{
		LineItems:      lines,
		TaxMinorUnits:  taxMinor,
		Customer:       customer,
		SuccessURL:     b.successURL,
		CancelURL:      b.cancelURL,
		IdempotencyKey: uuid.NewString(),
	}, nil
}

// minorUnits converts a decimal price to integer cents, rounding half-up.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(oneHundred).Round(0).IntPart()
}
