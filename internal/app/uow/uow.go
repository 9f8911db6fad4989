package uow

import (
	"context"

	domainbooking "tourway/internal/domain/booking"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Tours() domaintour.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
