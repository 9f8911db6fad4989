package reviews

import (
	"context"

	"tourway/internal/app/queries"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
)

const listReviewsKey = "reviews.list"

type ListReviewsQuery struct {
	TourID string
	Limit  int
	Offset int
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	Reviews domainreviews.Repository
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) ([]*domainreviews.Review, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return h.Reviews.ListByTour(ctx, domaintour.TourID(q.TourID), limit, q.Offset)
}

var _ queries.Handler[ListReviewsQuery, []*domainreviews.Review] = (*ListReviewsHandler)(nil)
