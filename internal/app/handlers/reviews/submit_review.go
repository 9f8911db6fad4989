package reviews

import (
	"context"
	"errors"
	"time"

	"tourway/internal/app/commands"
	"tourway/internal/app/uow"
	domainbooking "tourway/internal/domain/booking"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

const submitReviewKey = "reviews.submit"

var ErrUnitOfWorkRequired = errors.New("reviews: unit of work required")

type SubmitReviewCommand struct {
	ReviewID  string
	TourID    string
	UserID    string
	BookingID string
	Rating    int
	Text      string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

type SubmitReviewResult struct {
	ReviewID string `json:"review_id"`
}

// SubmitReviewHandler stores one review per user per tour and folds the
// rating into the tour's running average.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*SubmitReviewResult, error) {
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

	t, err := unit.Tours().ByID(ctx, domaintour.TourID(cmd.TourID))
	if err != nil {
		return nil, err
	}

	existing, err := unit.Reviews().ByTourAndAuthor(ctx, t.ID, domainuser.ID(cmd.UserID))
	if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainreviews.ErrAlreadyReviewed
	}

	now := h.now()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(cmd.ReviewID),
		TourID:    t.ID,
		AuthorID:  domainuser.ID(cmd.UserID),
		BookingID: domainbooking.BookingID(cmd.BookingID),
		Rating:    cmd.Rating,
		Text:      cmd.Text,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reviews().Save(ctx, review); err != nil {
		return nil, err
	}

	t.ApplyRating(review.Rating, now)
	if err := unit.Tours().Save(ctx, t); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &SubmitReviewResult{ReviewID: string(review.ID)}, nil
}

func (h *SubmitReviewHandler) unit(ctx context.Context) (uow.UnitOfWork, bool, error) {
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

func (h *SubmitReviewHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[SubmitReviewCommand, *SubmitReviewResult] = (*SubmitReviewHandler)(nil)
