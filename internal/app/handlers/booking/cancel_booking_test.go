package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "tourway/internal/app/handlers/booking"
	"tourway/internal/app/policies"
	domainbooking "tourway/internal/domain/booking"
	"tourway/internal/domain/shared/money"
	domainuser "tourway/internal/domain/user"
	"tourway/internal/infra/payments"
)

type ownerAuthorizer struct{}

func (ownerAuthorizer) IsOwnerOrAdmin(ctx context.Context, ownerID, requesterID domainuser.ID) (bool, error) {
	return ownerID == requesterID, nil
}

type recordingRefunds struct {
	bookingID string
	amount    money.Money
	calls     int
}

func (r *recordingRefunds) ExecuteRefund(ctx context.Context, bookingID string, amount money.Money, reason string) error {
	r.bookingID = bookingID
	r.amount = amount
	r.calls++
	return nil
}

func (f *fixture) cancelHandler(refunds policies.RefundExecutor, now time.Time) *bookingapp.CancelBookingHandler {
	return &bookingapp.CancelBookingHandler{
		UoWFactory: f.factory,
		Authorizer: ownerAuthorizer{},
		Refunds:    refunds,
		Notifier:   f.notifier,
		Outbox:     f.outbox,
		Now:        func() time.Time { return now },
	}
}

func (f *fixture) createConfirmedBooking(t *testing.T) {
	t.Helper()
	h := f.createHandler(&payments.Processor{})
	_, err := h.Handle(context.Background(), createCommand())
	require.NoError(t, err)
	require.NoError(t, f.outbox.Flush(context.Background()))
	f.notifier.confirmations = nil
}

func TestCancelBookingFullRefund(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.createConfirmedBooking(t)

	refunds := &recordingRefunds{}
	h := f.cancelHandler(refunds, fixedNow)
	ctx := context.Background()

	result, err := h.Handle(ctx, bookingapp.CancelBookingCommand{
		BookingID: "bk-1",
		Reason:    "change of plans",
		UserID:    "user-1",
	})
	require.NoError(t, err)

	// Travel starts 40 days out, so the 100% refund tier applies.
	assert.Equal(t, string(domainbooking.StatusCancelled), result.Status)
	assert.Equal(t, int64(57500), result.RefundAmount)
	assert.Equal(t, int64(100), result.RefundPercent)
	assert.True(t, result.Eligible)

	stored, err := f.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Cancellation)
	assert.Equal(t, "change of plans", stored.Cancellation.Reason)
	assert.Equal(t, int64(57500), stored.Cancellation.RefundAmount.Amount)

	tour, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, 5, tour.AvailableSlots)
	assert.Equal(t, 0, tour.TotalBooked)

	assert.Equal(t, 1, refunds.calls)
	assert.Equal(t, "bk-1", refunds.bookingID)
	assert.Equal(t, int64(57500), refunds.amount.Amount)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.cancelled", records[0].Name)

	require.Len(t, f.notifier.cancellations, 1)
	assert.Equal(t, "change of plans", f.notifier.cancellations[0].CancelReason)
}

func TestCancelBookingPartialRefundTier(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.createConfirmedBooking(t)

	// 20 days before travel only 75% comes back.
	cancelAt := fixedNow.AddDate(0, 0, 20)
	h := f.cancelHandler(policies.NoopRefundExecutor{}, cancelAt)

	result, err := h.Handle(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bk-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75), result.RefundPercent)
	assert.Equal(t, int64(43125), result.RefundAmount)
	assert.True(t, result.Eligible)
}

func TestCancelBookingOutsideRefundWindow(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.createConfirmedBooking(t)

	refunds := &recordingRefunds{}
	cancelAt := fixedNow.AddDate(0, 0, 37)
	h := f.cancelHandler(refunds, cancelAt)

	result, err := h.Handle(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bk-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)
	assert.Zero(t, result.RefundAmount)
	assert.Zero(t, result.RefundPercent)
	assert.False(t, result.Eligible)
	assert.Zero(t, refunds.calls, "ineligible cancellation must not trigger settlement")

	// The slot still frees up even without a refund.
	tour, err := f.tours.ByID(context.Background(), "tour-1")
	require.NoError(t, err)
	assert.Equal(t, 5, tour.AvailableSlots)
}

func TestCancelBookingTwiceRejected(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.createConfirmedBooking(t)

	h := f.cancelHandler(policies.NoopRefundExecutor{}, fixedNow)
	cmd := bookingapp.CancelBookingCommand{BookingID: "bk-1", UserID: "user-1"}

	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}

func TestCancelBookingForbiddenForStranger(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.createConfirmedBooking(t)

	h := f.cancelHandler(policies.NoopRefundExecutor{}, fixedNow)
	_, err := h.Handle(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bk-1",
		UserID:    "user-2",
	})
	assert.ErrorIs(t, err, bookingapp.ErrForbidden)

	stored, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)

	h := f.cancelHandler(policies.NoopRefundExecutor{}, fixedNow)
	_, err := h.Handle(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "missing",
		UserID:    "user-1",
	})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
