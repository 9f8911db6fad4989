package booking_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "tourway/internal/app/handlers/booking"
	"tourway/internal/app/policies"
	domainbooking "tourway/internal/domain/booking"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
	"tourway/internal/infra/payments"
	"tourway/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	tours    *memory.TourRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository
	factory  memory.Factory
	outbox   *memory.Outbox
	notifier *stubNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tours:    memory.NewTourRepository(),
		bookings: memory.NewBookingRepository(),
		users:    memory.NewUserRepository(),
		outbox:   memory.NewOutbox(),
		notifier: &stubNotifier{},
	}
	f.factory = memory.Factory{
		TourRepo:    f.tours,
		BookingRepo: f.bookings,
		UserRepo:    f.users,
		ReviewRepo:  memory.NewReviewRepository(),
	}
	return f
}

func (f *fixture) seedTour(t *testing.T, slots int) *domaintour.Tour {
	t.Helper()
	created, err := domaintour.NewTour(domaintour.CreateParams{
		ID:           "tour-1",
		Title:        "Inca Trail Expedition",
		Destination:  "Cusco",
		Country:      "Peru",
		DurationDays: 7,
		Price:        money.Must(50000, "USD"),
		MaxGroupSize: slots,
		CreatedAt:    fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.tours.Save(context.Background(), created))
	return created
}

func (f *fixture) seedUser(t *testing.T) *domainuser.User {
	t.Helper()
	usr, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "user-1",
		Email:        "ada@example.com",
		Name:         "Ada Lovelace",
		PasswordHash: "x",
		CreatedAt:    fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), usr))
	return usr
}

func (f *fixture) createHandler(processor *payments.Processor) *bookingapp.CreateBookingHandler {
	return &bookingapp.CreateBookingHandler{
		UoWFactory: f.factory,
		Payments:   processor,
		Notifier:   f.notifier,
		Outbox:     f.outbox,
		Logger:     slog.Default(),
		Now:        func() time.Time { return fixedNow },
	}
}

func createCommand() bookingapp.CreateBookingCommand {
	return bookingapp.CreateBookingCommand{
		CommandID: "bk-1",
		TourID:    "tour-1",
		UserID:    "user-1",
		Travelers: []bookingapp.TravelerInput{{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Phone:  "+1-555-0100",
			Age:    36,
			Gender: "female",
		}},
		TravelStart:   fixedNow.AddDate(0, 0, 40),
		TravelEnd:     fixedNow.AddDate(0, 0, 47),
		PaymentMethod: "credit_card",
	}
}

type stubNotifier struct {
	confirmations []policies.BookingNotification
	cancellations []policies.BookingNotification
	fail          bool
}

func (s *stubNotifier) SendBookingConfirmation(ctx context.Context, n policies.BookingNotification) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.confirmations = append(s.confirmations, n)
	return nil
}

func (s *stubNotifier) SendBookingCancellation(ctx context.Context, n policies.BookingNotification) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.cancellations = append(s.cancellations, n)
	return nil
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	h := f.createHandler(&payments.Processor{})
	ctx := context.Background()

	result, err := h.Handle(ctx, createCommand())
	require.NoError(t, err)

	assert.Equal(t, "bk-1", result.BookingID)
	assert.Equal(t, string(domainbooking.StatusConfirmed), result.Status)
	assert.Equal(t, int64(57500), result.TotalAmount)
	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, int64(5), result.RewardPoints)
	assert.True(t, result.EmailSent)
	assert.NotEmpty(t, result.Reference)
	assert.Equal(t, int64(57500), result.Receipt.Amount)
	assert.Equal(t, int64(1697), result.Receipt.Fees)
	assert.NotEmpty(t, result.Receipt.TransactionID)

	stored, err := f.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.Equal(t, domainbooking.PaymentCompleted, stored.Payment.Status)

	tour, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, 4, tour.AvailableSlots)
	assert.Equal(t, 1, tour.TotalBooked)

	usr, err := f.users.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), usr.RewardPoints)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.confirmed", records[0].Name)

	require.Len(t, f.notifier.confirmations, 1)
	assert.Equal(t, "ada@example.com", f.notifier.confirmations[0].UserEmail)
}

func TestCreateBookingPaymentDeclinedCompensates(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	h := f.createHandler(&payments.Processor{
		Decide: func(req policies.ChargeRequest) error {
			return errors.New("card declined")
		},
	})
	ctx := context.Background()

	_, err := h.Handle(ctx, createCommand())
	require.ErrorIs(t, err, bookingapp.ErrPaymentFailed)

	_, err = f.bookings.ByID(ctx, "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	tour, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, 5, tour.AvailableSlots)
	assert.Equal(t, 0, tour.TotalBooked)

	usr, err := f.users.ByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, usr.RewardPoints)
	assert.Empty(t, f.outbox.Records())
	assert.Empty(t, f.notifier.confirmations)
}

func TestCreateBookingSoldOut(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 1)
	f.seedUser(t)
	ctx := context.Background()
	require.NoError(t, f.tours.ReserveSlot(ctx, "tour-1"))

	h := f.createHandler(&payments.Processor{})
	_, err := h.Handle(ctx, createCommand())
	assert.ErrorIs(t, err, domaintour.ErrSoldOut)
}

func TestCreateBookingInactiveTour(t *testing.T) {
	f := newFixture(t)
	tour := f.seedTour(t, 5)
	f.seedUser(t)
	ctx := context.Background()
	tour.IsActive = false
	require.NoError(t, f.tours.Save(ctx, tour))

	h := f.createHandler(&payments.Processor{})
	_, err := h.Handle(ctx, createCommand())
	assert.ErrorIs(t, err, domaintour.ErrNotFound)
}

func TestCreateBookingUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)

	h := f.createHandler(&payments.Processor{})
	_, err := h.Handle(context.Background(), createCommand())
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestCreateBookingUnsupportedMethod(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)

	cmd := createCommand()
	cmd.PaymentMethod = "bitcoin"
	h := f.createHandler(&payments.Processor{})
	_, err := h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, policies.ErrUnsupportedMethod)
}

func TestCreateBookingNotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.seedTour(t, 5)
	f.seedUser(t)
	f.notifier.fail = true

	h := f.createHandler(&payments.Processor{})
	result, err := h.Handle(context.Background(), createCommand())
	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.Equal(t, string(domainbooking.StatusConfirmed), result.Status)
}
