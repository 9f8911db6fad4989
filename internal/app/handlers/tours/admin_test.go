package tours_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toursapp "tourway/internal/app/handlers/tours"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
	"tourway/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	tours   *memory.TourRepository
	factory memory.Factory
}

func newFixture() *fixture {
	tours := memory.NewTourRepository()
	return &fixture{
		tours: tours,
		factory: memory.Factory{
			TourRepo:    tours,
			BookingRepo: memory.NewBookingRepository(),
			UserRepo:    memory.NewUserRepository(),
			ReviewRepo:  memory.NewReviewRepository(),
		},
	}
}

func tourInput(title string) toursapp.TourInput {
	return toursapp.TourInput{
		Title:        title,
		Destination:  "Cusco",
		Country:      "Peru",
		DurationDays: 7,
		PriceAmount:  50000,
		Currency:     "USD",
		Difficulty:   "moderate",
	}
}

func TestCreateTourEntersCatalog(t *testing.T) {
	f := newFixture()
	handler := &toursapp.CreateTourHandler{UoWFactory: f.factory, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	result, err := handler.Handle(ctx, toursapp.CreateTourCommand{
		TourID:       "tour-1",
		MaxGroupSize: 12,
		TourInput:    tourInput("Inca Trail Expedition"),
	})
	require.NoError(t, err)
	assert.Equal(t, "tour-1", result.TourID)

	created, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, 12, created.AvailableSlots)
	assert.Zero(t, created.TotalBooked)

	search := &toursapp.SearchToursHandler{Tours: f.tours}
	items, err := search.Handle(ctx, toursapp.SearchToursQuery{Destination: "Cusco"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Inca Trail Expedition", items[0].Title)
}

func TestCreateTourValidation(t *testing.T) {
	f := newFixture()
	handler := &toursapp.CreateTourHandler{UoWFactory: f.factory}
	ctx := context.Background()

	input := tourInput("Broken")
	input.Currency = "DOLLARS"
	_, err := handler.Handle(ctx, toursapp.CreateTourCommand{TourID: "tour-1", MaxGroupSize: 5, TourInput: input})
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	_, err = handler.Handle(ctx, toursapp.CreateTourCommand{TourID: "tour-2", MaxGroupSize: 5, TourInput: tourInput("  ")})
	assert.ErrorIs(t, err, domaintour.ErrTitleNeeded)

	_, err = handler.Handle(ctx, toursapp.CreateTourCommand{TourID: "tour-3", TourInput: tourInput("No Room")})
	assert.ErrorIs(t, err, domaintour.ErrNoCapacity)
}

func TestUpdateTourPreservesReservedSlots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	create := &toursapp.CreateTourHandler{UoWFactory: f.factory, Now: func() time.Time { return fixedNow }}
	_, err := create.Handle(ctx, toursapp.CreateTourCommand{
		TourID:       "tour-1",
		MaxGroupSize: 10,
		TourInput:    tourInput("Inca Trail Expedition"),
	})
	require.NoError(t, err)
	require.NoError(t, f.tours.ReserveSlot(ctx, "tour-1"))

	input := tourInput("Inca Trail Expedition, Extended")
	input.PriceAmount = 65000
	update := &toursapp.UpdateTourHandler{UoWFactory: f.factory, Now: func() time.Time { return fixedNow.Add(time.Hour) }}
	_, err = update.Handle(ctx, toursapp.UpdateTourCommand{TourID: "tour-1", TourInput: input})
	require.NoError(t, err)

	got, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, "Inca Trail Expedition, Extended", got.Title)
	assert.Equal(t, money.Must(65000, "USD"), got.Price)
	assert.Equal(t, 1, got.TotalBooked, "catalog edit must not clobber the inventory ledger")
	assert.Equal(t, 9, got.AvailableSlots)
}

func TestUpdateTourNotFound(t *testing.T) {
	f := newFixture()
	handler := &toursapp.UpdateTourHandler{UoWFactory: f.factory}
	_, err := handler.Handle(context.Background(), toursapp.UpdateTourCommand{TourID: "ghost", TourInput: tourInput("Ghost")})
	assert.ErrorIs(t, err, domaintour.ErrNotFound)
}

func TestDeactivateTourLeavesCatalog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	create := &toursapp.CreateTourHandler{UoWFactory: f.factory, Now: func() time.Time { return fixedNow }}
	_, err := create.Handle(ctx, toursapp.CreateTourCommand{
		TourID:       "tour-1",
		MaxGroupSize: 10,
		TourInput:    tourInput("Inca Trail Expedition"),
	})
	require.NoError(t, err)

	deactivate := &toursapp.DeactivateTourHandler{UoWFactory: f.factory, Now: func() time.Time { return fixedNow.Add(time.Hour) }}
	_, err = deactivate.Handle(ctx, toursapp.DeactivateTourCommand{TourID: "tour-1"})
	require.NoError(t, err)

	got, err := f.tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	search := &toursapp.SearchToursHandler{Tours: f.tours}
	items, err := search.Handle(ctx, toursapp.SearchToursQuery{Destination: "Cusco"})
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, f.tours.ReserveSlot(ctx, "tour-1"), domaintour.ErrSoldOut)
}
