package reviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reviewsapp "tourway/internal/app/handlers/reviews"
	domainreviews "tourway/internal/domain/reviews"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
	"tourway/internal/infra/storage/memory"
)

var reviewNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*reviewsapp.SubmitReviewHandler, *memory.TourRepository, *memory.ReviewRepository) {
	t.Helper()
	tours := memory.NewTourRepository()
	reviews := memory.NewReviewRepository()
	created, err := domaintour.NewTour(domaintour.CreateParams{
		ID:           "tour-1",
		Title:        "Sahara Camel Trek",
		Destination:  "Merzouga",
		Country:      "Morocco",
		DurationDays: 4,
		Price:        money.Must(30000, "USD"),
		MaxGroupSize: 8,
		CreatedAt:    reviewNow,
	})
	require.NoError(t, err)
	require.NoError(t, tours.Save(context.Background(), created))

	h := &reviewsapp.SubmitReviewHandler{
		UoWFactory: memory.Factory{
			TourRepo:    tours,
			BookingRepo: memory.NewBookingRepository(),
			UserRepo:    memory.NewUserRepository(),
			ReviewRepo:  reviews,
		},
		Now: func() time.Time { return reviewNow },
	}
	return h, tours, reviews
}

func TestSubmitReviewUpdatesRatingSummary(t *testing.T) {
	h, tours, _ := setup(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1",
		TourID:   "tour-1",
		UserID:   "user-1",
		Rating:   4,
		Text:     "great guide",
	})
	require.NoError(t, err)

	_, err = h.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-2",
		TourID:   "tour-1",
		UserID:   "user-2",
		Rating:   5,
	})
	require.NoError(t, err)

	tour, err := tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, 2, tour.RatingCount)
	assert.InDelta(t, 4.5, tour.RatingAverage, 0.0001)
}

func TestSubmitReviewOncePerUser(t *testing.T) {
	h, _, _ := setup(t)
	ctx := context.Background()
	cmd := reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1",
		TourID:   "tour-1",
		UserID:   "user-1",
		Rating:   4,
	}

	_, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	cmd.ReviewID = "rev-2"
	_, err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, domainreviews.ErrAlreadyReviewed)
}

func TestSubmitReviewValidation(t *testing.T) {
	h, tours, _ := setup(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1",
		TourID:   "tour-1",
		UserID:   "user-1",
		Rating:   6,
	})
	assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)

	_, err = h.Handle(ctx, reviewsapp.SubmitReviewCommand{
		ReviewID: "rev-1",
		TourID:   "missing",
		UserID:   "user-1",
		Rating:   4,
	})
	assert.ErrorIs(t, err, domaintour.ErrNotFound)

	// Failed submissions must not touch the rating summary.
	tour, err := tours.ByID(ctx, "tour-1")
	require.NoError(t, err)
	assert.Zero(t, tour.RatingCount)
}
