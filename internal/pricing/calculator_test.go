package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

func item(id, price string, quantity int) domain.CartItem {
	return domain.CartItem{
		ID:       id,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	got := Compute(nil, decimal.RequireFromString("0.08"))

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestCompute_SubtotalTaxTotal(t *testing.T) {
	// 2 x 12.50 + 1 x 9.99 = 34.99; 34.99 * 0.08 = 2.7992 -> 2.80
	items := []domain.CartItem{
		item("b1", "12.50", 2),
		item("b2", "9.99", 1),
	}

	got := Compute(items, decimal.RequireFromString("0.08"))

	assert.Equal(t, "34.99", got.Subtotal.StringFixed(2))
	assert.Equal(t, "2.80", got.Tax.StringFixed(2))
	assert.Equal(t, "37.79", got.Total.StringFixed(2))
}

func TestCompute_ZeroTaxRate(t *testing.T) {
	items := []domain.CartItem{item("b1", "10.00", 1)}

	got := Compute(items, decimal.Zero)

	assert.Equal(t, "10.00", got.Subtotal.StringFixed(2))
	assert.True(t, got.Tax.IsZero())
	assert.Equal(t, "10.00", got.Total.StringFixed(2))
}

func TestCompute_OrderIndependent(t *testing.T) {
	a := []domain.CartItem{
		item("b1", "12.50", 2),
		item("b2", "9.99", 1),
		item("b3", "3.33", 7),
	}
	b := []domain.CartItem{a[2], a[0], a[1]}

	rate := decimal.RequireFromString("0.08")
	first := Compute(a, rate)
	second := Compute(b, rate)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestCompute_Idempotent(t *testing.T) {
	items := []domain.CartItem{item("b1", "19.99", 3)}
	rate := decimal.RequireFromString("0.0825")

	first := Compute(items, rate)
	second := Compute(items, rate)

	assert.Equal(t, first, second)
}
