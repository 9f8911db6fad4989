package booking

import (
	"context"

	"tourway/internal/app/policies"
	"tourway/internal/app/queries"
	domainbooking "tourway/internal/domain/booking"
	domainuser "tourway/internal/domain/user"
)

const (
	getBookingKey   = "booking.get"
	listBookingsKey = "booking.list"
)

type GetBookingQuery struct {
	BookingID string
	UserID    string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler returns a booking to its owner or an administrator.
type GetBookingHandler struct {
	Bookings   domainbooking.Repository
	Authorizer policies.Authorizer
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*domainbooking.Booking, error) {
	b, err := h.Bookings.ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	allowed, err := h.Authorizer.IsOwnerOrAdmin(ctx, b.UserID, domainuser.ID(q.UserID))
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return b, nil
}

type ListBookingsQuery struct {
	// OwnerID scopes the listing to one user's bookings; empty means the
	// admin-wide listing with the optional filters below.
	OwnerID string
	Status  string
	UserID  string
	Limit   int
	Offset  int
	ActorID string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

// AdminActor gates only the unscoped listing; owners always see their own.
func (q ListBookingsQuery) AdminActor() (string, bool) { return q.ActorID, q.OwnerID == "" }

type ListBookingsHandler struct {
	Bookings domainbooking.Repository
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]*domainbooking.Booking, error) {
	if q.OwnerID != "" {
		return h.Bookings.ListByUser(ctx, domainuser.ID(q.OwnerID))
	}
	return h.Bookings.List(ctx, domainbooking.ListFilter{
		Status: domainbooking.Status(q.Status),
		UserID: domainuser.ID(q.UserID),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

var _ queries.Handler[GetBookingQuery, *domainbooking.Booking] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListBookingsQuery, []*domainbooking.Booking] = (*ListBookingsHandler)(nil)
