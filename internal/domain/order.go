package domain

import "github.com/shopspring/decimal"

// PricingBreakdown is derived from a cart on demand and never stored.
type PricingBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// OrderLine is one billable line of a normalized order, already converted
// to minor currency units.
type OrderLine struct {
	Name                 string `json:"name"`
	UnitAmountMinorUnits int64  `json:"unitAmountMinorUnits"`
	Quantity             int    `json:"quantity"`
}

// NormalizedOrder is the provider-agnostic description of a purchase.
// It is built once per checkout attempt; a retry of the same attempt must
// reuse the same order (and therefore the same idempotency key) so the
// provider can deduplicate a double submit.
type NormalizedOrder struct {
	LineItems      []OrderLine  `json:"lineItems"`
	TaxMinorUnits  int64        `json:"taxMinorUnits"`
	Customer       CustomerInfo `json:"customer"`
	PaymentToken   string       `json:"paymentToken,omitempty"`
	SuccessURL     string       `json:"successUrl"`
	CancelURL      string       `json:"cancelUrl"`
	IdempotencyKey string       `json:"idempotencyKey"`
}

// TotalMinorUnits sums all line items. Tax is already a line item when
// present, so this is the full amount the provider bills.
func (o *NormalizedOrder) TotalMinorUnits() int64 {
	var total int64
	for _, li := range o.LineItems {
		total += li.UnitAmountMinorUnits * int64(li.Quantity)
	}
	return total
}

// PaymentSession is the transient result of a successful adapter call:
// either a hosted page to redirect to, or the outcome of a synchronous
// charge against a tokenized payment method.
type PaymentSession struct {
	RedirectURL string `json:"redirectUrl,omitempty"`
	ChargeID    string `json:"chargeId,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Synchronous reports whether the session is a completed charge rather
// than a redirect to a hosted page.
func (s *PaymentSession) Synchronous() bool {
	return s.RedirectURL == "" && s.ChargeID != ""
}
