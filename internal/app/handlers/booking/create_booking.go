package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tourway/internal/app/commands"
	"tourway/internal/app/middleware"
	"tourway/internal/app/outbox"
	"tourway/internal/app/policies"
	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	"tourway/internal/domain/pricing"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

const createBookingKey = "booking.create"

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	// ErrPaymentFailed wraps the gateway failure detail; the pending
	// booking is deleted and the reserved slot released before it is
	// returned.
	ErrPaymentFailed = errors.New("booking: payment processing failed")
	// ErrCompensationFailed signals that undoing partial work itself
	// failed and manual reconciliation is needed.
	ErrCompensationFailed = errors.New("booking: compensation failed, manual reconciliation required")
)

type TravelerInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type CreateBookingCommand struct {
	CommandID       string
	TourID          string
	UserID          string
	Travelers       []TravelerInput
	TravelStart     time.Time
	TravelEnd       time.Time
	PaymentMethod   string
	SpecialRequests string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

// Receipt is the payment receipt returned alongside a confirmed booking.
type Receipt struct {
	ReceiptNumber    string    `json:"receipt_number"`
	BookingReference string    `json:"booking_reference"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	PaymentMethod    string    `json:"payment_method"`
	TransactionID    string    `json:"transaction_id"`
	PaidAt           time.Time `json:"paid_at"`
	Fees             int64     `json:"fees"`
}

type CreateBookingResult struct {
	BookingID    string  `json:"booking_id"`
	Reference    string  `json:"reference"`
	Status       string  `json:"status"`
	TotalAmount  int64   `json:"total_amount"`
	Currency     string  `json:"currency"`
	Receipt      Receipt `json:"receipt"`
	RewardPoints int64   `json:"reward_points"`
	EmailSent    bool    `json:"email_sent"`
}

// CreateBookingHandler orchestrates the booking creation flow: validate,
// quote, persist pending, reserve inventory, charge, confirm, accrue
// rewards, notify. Inventory is reserved atomically before payment; the
// compensating action on a declined charge releases the slot and deletes
// the pending record so no failed booking is ever visible.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Notifier   policies.Notifier
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, managed, err := h.unit(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	method, err := policies.ParseMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}
	now := h.now()

	t, err := unit.Tours().ByID(ctx, domaintour.TourID(cmd.TourID))
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, domaintour.ErrNotFound
	}
	// Early exit only; ReserveSlot below is the authoritative check.
	if t.AvailableSlots <= 0 {
		return nil, domaintour.ErrSoldOut
	}

	usr, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}

	snapshot, err := pricing.Quote(t.Price, t.DiscountPercent)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(cmd.CommandID),
		TourID:          t.ID,
		UserID:          usr.ID,
		Travelers:       travelersFromInput(cmd.Travelers),
		Dates:           domainbooking.TravelDates{Start: cmd.TravelStart, End: cmd.TravelEnd},
		Price:           snapshot,
		PaymentMethod:   string(method),
		SpecialRequests: cmd.SpecialRequests,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	if err := unit.Tours().ReserveSlot(ctx, t.ID); err != nil {
		if delErr := unit.Bookings().Delete(ctx, b.ID); delErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrCompensationFailed, delErr)
		}
		return nil, err
	}

	charge, err := h.Payments.Charge(ctx, policies.ChargeRequest{
		Method: method,
		Amount: snapshot.TotalAmount,
		Metadata: policies.ChargeMetadata{
			BookingID: string(b.ID),
			UserID:    string(usr.ID),
			TourID:    string(t.ID),
		},
	})
	if err != nil {
		if compErr := h.compensate(ctx, unit, b); compErr != nil {
			return nil, errors.Join(err, compErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, err)
	}

	if err := b.Confirm(charge.TransactionID, charge.PaymentIntentID, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	points := snapshot.TotalAmount.Points()
	if points > 0 {
		if err := unit.Users().IncrementRewardPoints(ctx, usr.ID, points); err != nil {
			return nil, err
		}
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	emailSent := h.notifyConfirmation(ctx, b, usr, t)

	return &CreateBookingResult{
		BookingID:    string(b.ID),
		Reference:    b.Reference,
		Status:       string(b.Status),
		TotalAmount:  snapshot.TotalAmount.Amount,
		Currency:     snapshot.Currency(),
		Receipt:      h.receipt(b, method, now),
		RewardPoints: points,
		EmailSent:    emailSent,
	}, nil
}

// compensate undoes a reserved slot and the pending booking record after a
// declined charge. Both steps are attempted even if the first fails.
func (h *CreateBookingHandler) compensate(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
	var errs []error
	if err := unit.Tours().ReleaseSlot(ctx, b.TourID); err != nil {
		errs = append(errs, err)
	}
	if err := unit.Bookings().Delete(ctx, b.ID); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrCompensationFailed, errors.Join(errs...))
	}
	return nil
}

func (h *CreateBookingHandler) notifyConfirmation(ctx context.Context, b *domainbooking.Booking, usr *domainuser.User, t *domaintour.Tour) bool {
	if h.Notifier == nil {
		return false
	}
	err := h.Notifier.SendBookingConfirmation(ctx, notification(b, usr, t))
	if err != nil {
		h.logger().Warn("booking confirmation notification failed", "booking", b.Reference, "error", err)
		return false
	}
	return true
}

func (h *CreateBookingHandler) receipt(b *domainbooking.Booking, method policies.Method, now time.Time) Receipt {
	fees := h.Payments.FeeEstimate(method, b.Price.TotalAmount)
	return Receipt{
		ReceiptNumber:    fmt.Sprintf("RCP-%d", now.UnixMilli()),
		BookingReference: b.Reference,
		Amount:           b.Price.TotalAmount.Amount,
		Currency:         b.Price.Currency(),
		PaymentMethod:    string(method),
		TransactionID:    b.Payment.TransactionID,
		PaidAt:           b.Payment.PaidAt,
		Fees:             fees.Amount,
	}
}

func (h *CreateBookingHandler) unit(ctx context.Context) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if h.UoWFactory == nil {
		return nil, false, ErrUnitOfWorkRequired
	}
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func travelersFromInput(in []TravelerInput) []domainbooking.Traveler {
	out := make([]domainbooking.Traveler, 0, len(in))
	for _, t := range in {
		out = append(out, domainbooking.Traveler{
			Name:   t.Name,
			Email:  t.Email,
			Phone:  t.Phone,
			Age:    t.Age,
			Gender: domainbooking.Gender(t.Gender),
		})
	}
	return out
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
