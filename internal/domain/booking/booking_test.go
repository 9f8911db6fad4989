package booking_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/domain/booking"
	"tourway/internal/domain/pricing"
	"tourway/internal/domain/shared/money"
	"tourway/internal/domain/tour"
	"tourway/internal/domain/user"
)

var testNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func validParams() booking.CreateParams {
	snapshot, _ := pricing.Quote(money.Must(50000, "USD"), 0)
	return booking.CreateParams{
		ID:     booking.BookingID("bk-1"),
		TourID: tour.TourID("tour-1"),
		UserID: user.ID("user-1"),
		Travelers: []booking.Traveler{{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Phone:  "+1-555-0100",
			Age:    36,
			Gender: booking.GenderFemale,
		}},
		Dates: booking.TravelDates{
			Start: testNow.AddDate(0, 0, 40),
			End:   testNow.AddDate(0, 0, 47),
		},
		Price:         snapshot,
		PaymentMethod: "credit_card",
		CreatedAt:     testNow,
	}
}

func TestNewBookingStartsPending(t *testing.T) {
	b, err := booking.NewBooking(validParams())
	require.NoError(t, err)

	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentPending, b.Payment.Status)
	assert.Equal(t, "credit_card", b.Payment.Method)
	assert.True(t, strings.HasPrefix(b.Reference, "TW"))
	assert.Greater(t, len(b.Reference), 8)
	assert.Empty(t, b.PendingEvents())
}

func TestNewBookingValidation(t *testing.T) {
	t.Run("no travelers", func(t *testing.T) {
		params := validParams()
		params.Travelers = nil
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrNoTravelers)
	})

	t.Run("incomplete traveler", func(t *testing.T) {
		params := validParams()
		params.Travelers[0].Email = ""
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrTravelerIncomplete)
	})

	t.Run("non positive age", func(t *testing.T) {
		params := validParams()
		params.Travelers[0].Age = 0
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrTravelerIncomplete)
	})

	t.Run("unknown gender", func(t *testing.T) {
		params := validParams()
		params.Travelers[0].Gender = "robot"
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrTravelerIncomplete)
	})

	t.Run("inverted date range", func(t *testing.T) {
		params := validParams()
		params.Dates.Start, params.Dates.End = params.Dates.End, params.Dates.Start
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
	})

	t.Run("start in the past", func(t *testing.T) {
		params := validParams()
		params.Dates.Start = testNow.AddDate(0, 0, -2)
		_, err := booking.NewBooking(params)
		assert.ErrorIs(t, err, booking.ErrStartInPast)
	})
}

func TestConfirmFromPending(t *testing.T) {
	b, err := booking.NewBooking(validParams())
	require.NoError(t, err)

	require.NoError(t, b.Confirm("txn_abc", "pi_abc", testNow))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentCompleted, b.Payment.Status)
	assert.Equal(t, "txn_abc", b.Payment.TransactionID)
	assert.Equal(t, "pi_abc", b.Payment.PaymentIntentID)
	assert.Equal(t, testNow, b.Payment.PaidAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.confirmed", events[0].EventName())

	assert.ErrorIs(t, b.Confirm("txn_dup", "", testNow), booking.ErrInvalidState)
}

func TestCancelRecordsRefundQuote(t *testing.T) {
	b, err := booking.NewBooking(validParams())
	require.NoError(t, err)
	require.NoError(t, b.Confirm("txn_abc", "", testNow))
	b.ClearEvents()

	quote := pricing.Refund(b.Price.TotalAmount, b.Dates.Start, testNow)
	require.NoError(t, b.Cancel("  change of plans  ", quote, testNow))

	assert.Equal(t, booking.StatusCancelled, b.Status)
	require.NotNil(t, b.Cancellation)
	assert.Equal(t, "change of plans", b.Cancellation.Reason)
	assert.Equal(t, quote.Amount, b.Cancellation.RefundAmount)
	assert.Equal(t, quote.Percent, b.Cancellation.RefundPercent)
	assert.True(t, b.Cancellation.RefundEligible)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.cancelled", events[0].EventName())
}

func TestCancelRejectsTerminalStates(t *testing.T) {
	b, err := booking.NewBooking(validParams())
	require.NoError(t, err)
	require.NoError(t, b.Confirm("txn_abc", "", testNow))

	quote := pricing.Refund(b.Price.TotalAmount, b.Dates.Start, testNow)
	require.NoError(t, b.Cancel("first", quote, testNow))
	assert.ErrorIs(t, b.Cancel("second", quote, testNow), booking.ErrInvalidState)

	other, err := booking.NewBooking(validParams())
	require.NoError(t, err)
	require.NoError(t, other.Confirm("txn_def", "", testNow))
	require.NoError(t, other.Complete(testNow))
	assert.ErrorIs(t, other.Cancel("too late", quote, testNow), booking.ErrInvalidState)
}

func TestCompleteAndNoShowRequireConfirmed(t *testing.T) {
	b, err := booking.NewBooking(validParams())
	require.NoError(t, err)

	assert.ErrorIs(t, b.Complete(testNow), booking.ErrInvalidState)
	assert.ErrorIs(t, b.MarkNoShow(testNow), booking.ErrInvalidState)

	require.NoError(t, b.Confirm("txn_abc", "", testNow))
	require.NoError(t, b.Complete(testNow))
	assert.Equal(t, booking.StatusCompleted, b.Status)
	assert.True(t, b.Status.Terminal())

	other, err := booking.NewBooking(validParams())
	require.NoError(t, err)
	require.NoError(t, other.Confirm("txn_def", "", testNow))
	require.NoError(t, other.MarkNoShow(testNow))
	assert.Equal(t, booking.StatusNoShow, other.Status)
	assert.False(t, other.Status.Terminal())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, booking.StatusPending.Terminal())
	assert.False(t, booking.StatusConfirmed.Terminal())
	assert.False(t, booking.StatusNoShow.Terminal())
	assert.True(t, booking.StatusCancelled.Terminal())
	assert.True(t, booking.StatusCompleted.Terminal())
}

func TestNewReferenceShape(t *testing.T) {
	ref := booking.NewReference(testNow)
	assert.True(t, strings.HasPrefix(ref, "TW"))
	for _, r := range ref {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z'), "unexpected rune %q", r)
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[booking.NewReference(testNow)] = true
	}
	assert.Len(t, seen, 50)
}
