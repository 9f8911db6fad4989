package memory

import (
	"context"
	"sort"
	"sync"

	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

// ReviewRepository is a lightweight in-memory review store.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

// NewReviewRepository builds an empty reviews store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByTourAndAuthor(ctx context.Context, tourID domaintour.TourID, authorID domainuser.ID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.items {
		if review.TourID == tourID && review.AuthorID == authorID {
			copyReview := *review
			return &copyReview, nil
		}
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewRepository) ListByTour(ctx context.Context, tourID domaintour.TourID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.TourID != tourID {
			continue
		}
		copyReview := *review
		matches = append(matches, &copyReview)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	start := offset
	if start > total {
		start = total
	}
	end := total
	if limit > 0 && start+limit < total {
		end = start + limit
	}
	return matches[start:end], nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyReview := *review
	r.items[review.ID] = &copyReview
	return nil
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
