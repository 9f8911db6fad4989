package memory

import (
	"context"
	"errors"

	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	TourRepo    domaintour.Repository
	BookingRepo domainbooking.Repository
	UserRepo    domainuser.Repository
	ReviewRepo  domainreviews.Repository
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.TourRepo == nil || f.BookingRepo == nil || f.UserRepo == nil || f.ReviewRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		tours:    f.TourRepo,
		bookings: f.BookingRepo,
		users:    f.UserRepo,
		reviews:  f.ReviewRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	tours    domaintour.Repository
	bookings domainbooking.Repository
	users    domainuser.Repository
	reviews  domainreviews.Repository
}

func (u *Unit) Tours() domaintour.Repository {
	return u.tours
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
