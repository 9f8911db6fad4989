package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tourway/internal/app/commands"
	"tourway/internal/app/outbox"
	"tourway/internal/app/policies"
	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	"tourway/internal/domain/pricing"
	domainuser "tourway/internal/domain/user"
)

const cancelBookingKey = "booking.cancel"

// ErrForbidden is returned when the requester neither owns the booking nor
// holds administrative privilege.
var ErrForbidden = errors.New("booking: access denied")

type CancelBookingCommand struct {
	BookingID string
	Reason    string
	UserID    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID     string `json:"booking_id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	RefundAmount  int64  `json:"refund_amount"`
	RefundPercent int64  `json:"refund_percent"`
	Currency      string `json:"currency"`
	Eligible      bool   `json:"refund_eligible"`
}

// CancelBookingHandler applies the cancellation policy: refund is computed
// from the booking's stored total against the travel start date, the slot
// is released unconditionally, and the refund amount is recorded but not
// executed here (RefundExecutor is the settlement hook).
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Authorizer policies.Authorizer
	Refunds    policies.RefundExecutor
	Notifier   policies.Notifier
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	allowed, err := h.Authorizer.IsOwnerOrAdmin(ctx, b.UserID, domainuser.ID(cmd.UserID))
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	now := h.now()
	quote := pricing.Refund(b.Price.TotalAmount, b.Dates.Start, now)
	if err := b.Cancel(cmd.Reason, quote, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	// A cancelled booking always frees its slot, refundable or not.
	if err := unit.Tours().ReleaseSlot(ctx, b.TourID); err != nil {
		return nil, err
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

	if quote.Eligible && h.Refunds != nil {
		if err := h.Refunds.ExecuteRefund(ctx, string(b.ID), quote.Amount, b.Cancellation.Reason); err != nil {
			h.logger().Warn("refund settlement hook failed", "booking", b.Reference, "amount", quote.Amount.String(), "error", err)
		}
	}

	h.notifyCancellation(ctx, unit, b)

	return &CancelBookingResult{
		BookingID:     string(b.ID),
		Reference:     b.Reference,
		Status:        string(b.Status),
		RefundAmount:  quote.Amount.Amount,
		RefundPercent: quote.Percent,
		Currency:      b.Price.Currency(),
		Eligible:      quote.Eligible,
	}, nil
}

func (h *CancelBookingHandler) notifyCancellation(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) {
	if h.Notifier == nil {
		return
	}
	usr, err := unit.Users().ByID(ctx, b.UserID)
	if err != nil {
		h.logger().Warn("cancellation notification skipped, user lookup failed", "booking", b.Reference, "error", err)
		return
	}
	t, err := unit.Tours().ByID(ctx, b.TourID)
	if err != nil {
		h.logger().Warn("cancellation notification skipped, tour lookup failed", "booking", b.Reference, "error", err)
		return
	}
	if err := h.Notifier.SendBookingCancellation(ctx, notification(b, usr, t)); err != nil {
		h.logger().Warn("booking cancellation notification failed", "booking", b.Reference, "error", err)
	}
}

func (h *CancelBookingHandler) unit(ctx context.Context) (uow.UnitOfWork, bool, error) {
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

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CancelBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
