package booking

import (
	"context"
	"fmt"
	"time"

	"tourway/internal/app/commands"
	"tourway/internal/app/outbox"
	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
)

const updateStatusKey = "booking.update_status"

// UpdateStatusCommand is the administrative transition for confirmed
// bookings: completed or no_show.
type UpdateStatusCommand struct {
	BookingID string
	Status    string
	Notes     string
	ActorID   string
}

func (c UpdateStatusCommand) Key() string { return updateStatusKey }

func (c UpdateStatusCommand) AdminActor() (string, bool) { return c.ActorID, true }

type UpdateStatusResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type UpdateStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*UpdateStatusResult, error) {
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

	now := h.now()
	switch domainbooking.Status(cmd.Status) {
	case domainbooking.StatusCompleted:
		err = b.Complete(now)
	case domainbooking.StatusNoShow:
		err = b.MarkNoShow(now)
	default:
		return nil, fmt.Errorf("%w: status %q", domainbooking.ErrInvalidState, cmd.Status)
	}
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
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

	return &UpdateStatusResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *UpdateStatusHandler) unit(ctx context.Context) (uow.UnitOfWork, bool, error) {
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

func (h *UpdateStatusHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *UpdateStatusHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[UpdateStatusCommand, *UpdateStatusResult] = (*UpdateStatusHandler)(nil)
