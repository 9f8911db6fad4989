package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourway/internal/domain/booking"
	"tourway/internal/domain/tour"
	"tourway/internal/domain/user"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrAlreadyReviewed = errors.New("reviews: user already reviewed this tour")
	ErrNotFound        = errors.New("reviews: not found")
)

type ReviewID string

type Review struct {
	ID        ReviewID
	TourID    tour.TourID
	AuthorID  user.ID
	BookingID booking.BookingID
	Rating    int
	Text      string
	CreatedAt time.Time
}

type Repository interface {
	ByTourAndAuthor(ctx context.Context, tourID tour.TourID, authorID user.ID) (*Review, error)
	ListByTour(ctx context.Context, tourID tour.TourID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID        ReviewID
	TourID    tour.TourID
	AuthorID  user.ID
	BookingID booking.BookingID
	Rating    int
	Text      string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:        params.ID,
		TourID:    params.TourID,
		AuthorID:  params.AuthorID,
		BookingID: params.BookingID,
		Rating:    params.Rating,
		Text:      strings.TrimSpace(params.Text),
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}
