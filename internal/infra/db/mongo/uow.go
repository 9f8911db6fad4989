package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	TourRepo    domaintour.Repository
	BookingRepo domainbooking.Repository
	UserRepo    domainuser.Repository
	ReviewRepo  domainreviews.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		tours:    f.TourRepo,
		bookings: f.BookingRepo,
		users:    f.UserRepo,
		reviews:  f.ReviewRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
