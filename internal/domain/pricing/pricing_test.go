package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/domain/pricing"
	"tourway/internal/domain/shared/money"
)

func TestQuoteBreakdown(t *testing.T) {
	// 1000.00 base with 10% discount: discount 100.00, discounted 900.00,
	// tax 90.00, fee 45.00, total 1035.00.
	snap, err := pricing.Quote(money.Must(100000, "USD"), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(100000), snap.BasePrice.Amount)
	assert.Equal(t, int64(10000), snap.DiscountAmount.Amount)
	assert.Equal(t, int64(9000), snap.TaxAmount.Amount)
	assert.Equal(t, int64(4500), snap.FeeAmount.Amount)
	assert.Equal(t, int64(103500), snap.TotalAmount.Amount)
	assert.Equal(t, "USD", snap.Currency())
	assert.Equal(t, int64(10), snap.TotalAmount.Points())
}

func TestQuoteWithoutDiscount(t *testing.T) {
	snap, err := pricing.Quote(money.Must(50000, "USD"), 0)
	require.NoError(t, err)

	assert.True(t, snap.DiscountAmount.IsZero())
	assert.Equal(t, int64(5000), snap.TaxAmount.Amount)
	assert.Equal(t, int64(2500), snap.FeeAmount.Amount)
	assert.Equal(t, int64(57500), snap.TotalAmount.Amount)
	assert.Equal(t, int64(5), snap.TotalAmount.Points())
}

func TestQuoteZeroBase(t *testing.T) {
	snap, err := pricing.Quote(money.Must(0, "USD"), 50)
	require.NoError(t, err)
	assert.True(t, snap.TotalAmount.IsZero())
}

func TestQuoteRejectsBadInput(t *testing.T) {
	_, err := pricing.Quote(money.Money{Amount: -1, Currency: "USD"}, 0)
	assert.ErrorIs(t, err, pricing.ErrNegativeBasePrice)

	_, err = pricing.Quote(money.Must(1000, "USD"), -1)
	assert.ErrorIs(t, err, pricing.ErrInvalidDiscount)

	_, err = pricing.Quote(money.Must(1000, "USD"), 101)
	assert.ErrorIs(t, err, pricing.ErrInvalidDiscount)
}

func TestQuoteComponentsSumToTotal(t *testing.T) {
	bases := []int64{1, 99, 12345, 100000, 999999}
	discounts := []int64{0, 1, 10, 33, 50, 99, 100}
	for _, base := range bases {
		for _, d := range discounts {
			snap, err := pricing.Quote(money.Must(base, "USD"), d)
			require.NoError(t, err)
			discounted := base - snap.DiscountAmount.Amount
			want := discounted + snap.TaxAmount.Amount + snap.FeeAmount.Amount
			assert.Equal(t, want, snap.TotalAmount.Amount, "base=%d discount=%d", base, d)
			assert.GreaterOrEqual(t, snap.TotalAmount.Amount, int64(0))
		}
	}
}
