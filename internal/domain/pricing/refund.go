package pricing

import (
	"time"

	"tourway/internal/domain/shared/money"
)

// RefundQuote is the outcome of applying the cancellation policy tiers.
type RefundQuote struct {
	Amount   money.Money
	Percent  int64
	Eligible bool
	DaysOut  int
}

// Refund computes the refundable portion of a paid total based on how many
// days remain until travel starts. Breakpoints are strict greater-than
// comparisons; a travel date already in the past yields negative days and
// lands in the zero-refund tier.
func Refund(total money.Money, travelStart, now time.Time) RefundQuote {
	days := daysUntil(travelStart, now)

	var percent int64
	switch {
	case days > 30:
		percent = 100
	case days > 14:
		percent = 75
	case days > 7:
		percent = 50
	default:
		percent = 0
	}

	return RefundQuote{
		Amount:   total.PercentOf(percent),
		Percent:  percent,
		Eligible: percent > 0,
		DaysOut:  days,
	}
}

// daysUntil returns ceil((travelStart - now) / 24h).
func daysUntil(travelStart, now time.Time) int {
	diff := travelStart.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
