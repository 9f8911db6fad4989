package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tourway/internal/domain/pricing"
	"tourway/internal/domain/shared/money"
)

func TestRefundTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	total := money.Must(100000, "USD")

	cases := []struct {
		name        string
		daysOut     int
		wantPercent int64
		wantAmount  int64
	}{
		{"well ahead", 45, 100, 100000},
		{"just over a month", 31, 100, 100000},
		{"three weeks", 20, 75, 75000},
		{"fifteen days", 15, 75, 75000},
		{"ten days", 10, 50, 50000},
		{"eight days", 8, 50, 50000},
		{"one week", 7, 0, 0},
		{"three days", 3, 0, 0},
		{"day of travel", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := now.AddDate(0, 0, tc.daysOut)
			quote := pricing.Refund(total, start, now)
			assert.Equal(t, tc.wantPercent, quote.Percent)
			assert.Equal(t, tc.wantAmount, quote.Amount.Amount)
			assert.Equal(t, tc.wantPercent > 0, quote.Eligible)
			assert.Equal(t, tc.daysOut, quote.DaysOut)
		})
	}
}

func TestRefundPastTravelDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)
	quote := pricing.Refund(money.Must(50000, "USD"), start, now)
	assert.False(t, quote.Eligible)
	assert.Zero(t, quote.Amount.Amount)
	assert.Equal(t, -5, quote.DaysOut)
}

func TestRefundPartialDayRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	// 30 days and 6 hours away rounds up to 31 days: full refund.
	start := now.Add(30*24*time.Hour + 6*time.Hour)
	quote := pricing.Refund(money.Must(10000, "USD"), start, now)
	assert.Equal(t, int64(100), quote.Percent)
	assert.Equal(t, 31, quote.DaysOut)
}

func TestRefundBoundaryExactly30Days(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, 30)
	quote := pricing.Refund(money.Must(10000, "USD"), start, now)
	// Exactly 30 days fails the strict >30 check and falls to the 75% tier.
	assert.Equal(t, int64(75), quote.Percent)
}
