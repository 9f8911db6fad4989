package tours

import (
	"context"
	"errors"
	"time"

	"tourway/internal/app/commands"
	"tourway/internal/app/uow"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
)

const (
	createTourKey     = "tours.create"
	updateTourKey     = "tours.update"
	deactivateTourKey = "tours.deactivate"
)

var ErrUnitOfWorkRequired = errors.New("tours: unit of work required")

// TourInput carries the catalog fields shared by create and update.
type TourInput struct {
	Title              string
	Description        string
	Destination        string
	Country            string
	DurationDays       int
	PriceAmount        int64
	Currency           string
	DiscountPercent    int64
	Difficulty         string
	CancellationPolicy string
	Tags               []string
	IsFeatured         bool
}

// CreateTourCommand puts a new tour on sale. Administrators only.
type CreateTourCommand struct {
	TourID       string
	MaxGroupSize int
	ActorID      string
	TourInput
}

func (c CreateTourCommand) Key() string { return createTourKey }

func (c CreateTourCommand) AdminActor() (string, bool) { return c.ActorID, true }

type CreateTourResult struct {
	TourID string `json:"tour_id"`
}

type CreateTourHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *CreateTourHandler) Handle(ctx context.Context, cmd CreateTourCommand) (*CreateTourResult, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
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

	price, err := money.New(cmd.PriceAmount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	t, err := domaintour.NewTour(domaintour.CreateParams{
		ID:                 domaintour.TourID(cmd.TourID),
		Title:              cmd.Title,
		Description:        cmd.Description,
		Destination:        cmd.Destination,
		Country:            cmd.Country,
		DurationDays:       cmd.DurationDays,
		Price:              price,
		DiscountPercent:    cmd.DiscountPercent,
		Difficulty:         domaintour.Difficulty(cmd.Difficulty),
		MaxGroupSize:       cmd.MaxGroupSize,
		CancellationPolicy: cmd.CancellationPolicy,
		Tags:               cmd.Tags,
		CreatedAt:          resolveNow(h.Now),
	})
	if err != nil {
		return nil, err
	}
	t.IsFeatured = cmd.IsFeatured

	if err := unit.Tours().Save(ctx, t); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateTourResult{TourID: string(t.ID)}, nil
}

// UpdateTourCommand edits the catalog fields of an existing tour. The
// capacity ledger is out of scope: reserved and remaining slots survive any
// edit untouched.
type UpdateTourCommand struct {
	TourID  string
	ActorID string
	TourInput
}

func (c UpdateTourCommand) Key() string { return updateTourKey }

func (c UpdateTourCommand) AdminActor() (string, bool) { return c.ActorID, true }

type UpdateTourResult struct {
	TourID string `json:"tour_id"`
}

type UpdateTourHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *UpdateTourHandler) Handle(ctx context.Context, cmd UpdateTourCommand) (*UpdateTourResult, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
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

	t, err := unit.Tours().ByID(ctx, domaintour.TourID(cmd.TourID))
	if err != nil {
		return nil, err
	}
	price, err := money.New(cmd.PriceAmount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	err = t.UpdateDetails(domaintour.UpdateParams{
		Title:              cmd.Title,
		Description:        cmd.Description,
		Destination:        cmd.Destination,
		Country:            cmd.Country,
		DurationDays:       cmd.DurationDays,
		Price:              price,
		DiscountPercent:    cmd.DiscountPercent,
		Difficulty:         domaintour.Difficulty(cmd.Difficulty),
		CancellationPolicy: cmd.CancellationPolicy,
		Tags:               cmd.Tags,
		IsFeatured:         cmd.IsFeatured,
	}, resolveNow(h.Now))
	if err != nil {
		return nil, err
	}

	if err := unit.Tours().Save(ctx, t); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &UpdateTourResult{TourID: string(t.ID)}, nil
}

// DeactivateTourCommand takes a tour off sale. Existing bookings keep their
// history; the tour just stops matching the public catalog.
type DeactivateTourCommand struct {
	TourID  string
	ActorID string
}

func (c DeactivateTourCommand) Key() string { return deactivateTourKey }

func (c DeactivateTourCommand) AdminActor() (string, bool) { return c.ActorID, true }

type DeactivateTourResult struct {
	TourID string `json:"tour_id"`
}

type DeactivateTourHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *DeactivateTourHandler) Handle(ctx context.Context, cmd DeactivateTourCommand) (*DeactivateTourResult, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
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

	t, err := unit.Tours().ByID(ctx, domaintour.TourID(cmd.TourID))
	if err != nil {
		return nil, err
	}
	t.Deactivate(resolveNow(h.Now))

	if err := unit.Tours().Save(ctx, t); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &DeactivateTourResult{TourID: string(t.ID)}, nil
}

func beginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

func resolveNow(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateTourCommand, *CreateTourResult] = (*CreateTourHandler)(nil)
var _ commands.Handler[UpdateTourCommand, *UpdateTourResult] = (*UpdateTourHandler)(nil)
var _ commands.Handler[DeactivateTourCommand, *DeactivateTourResult] = (*DeactivateTourHandler)(nil)
