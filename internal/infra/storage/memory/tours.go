package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domaintour "tourway/internal/domain/tour"
)

// TourRepository is an in-memory implementation for tests and local runs.
type TourRepository struct {
	mu    sync.RWMutex
	items map[domaintour.TourID]*domaintour.Tour
}

// NewTourRepository builds an empty repository.
func NewTourRepository() *TourRepository {
	return &TourRepository{items: make(map[domaintour.TourID]*domaintour.Tour)}
}

// ByID returns a tour snapshot or domain ErrNotFound.
func (r *TourRepository) ByID(ctx context.Context, id domaintour.TourID) (*domaintour.Tour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domaintour.ErrNotFound
	}
	return cloneTour(t), nil
}

// Save stores/updates a tour. Capacity counters already held in the store
// win over the caller's copy so Save never undoes a concurrent reservation.
func (r *TourRepository) Save(ctx context.Context, t *domaintour.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := cloneTour(t)
	if current, ok := r.items[t.ID]; ok {
		next.TotalBooked = current.TotalBooked
		next.AvailableSlots = current.AvailableSlots
	}
	r.items[t.ID] = next
	return nil
}

// Search returns tours that satisfy the provided filters.
func (r *TourRepository) Search(ctx context.Context, params domaintour.SearchParams) ([]*domaintour.Tour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domaintour.Tour, 0, len(r.items))
	for _, t := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if params.OnlyActive && !t.IsActive {
			continue
		}
		if params.FeaturedOnly && !t.IsFeatured {
			continue
		}
		if params.Destination != "" && !strings.EqualFold(t.Destination, params.Destination) {
			continue
		}
		if params.Country != "" && !strings.EqualFold(t.Country, params.Country) {
			continue
		}
		if params.Difficulty != "" && t.Difficulty != params.Difficulty {
			continue
		}
		if params.PriceMin > 0 && t.Price.Amount < params.PriceMin {
			continue
		}
		if params.PriceMax > 0 && t.Price.Amount > params.PriceMax {
			continue
		}
		matches = append(matches, cloneTour(t))
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := params.Offset
	if start > total {
		start = total
	}
	end := total
	if params.Limit > 0 && start+params.Limit < total {
		end = start + params.Limit
	}
	return matches[start:end], nil
}

// ReserveSlot checks and decrements the counter under one lock acquisition.
func (r *TourRepository) ReserveSlot(ctx context.Context, id domaintour.TourID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return domaintour.ErrNotFound
	}
	if !t.IsActive {
		return domaintour.ErrSoldOut
	}
	if t.AvailableSlots <= 0 {
		return domaintour.ErrSoldOut
	}
	t.AvailableSlots--
	t.TotalBooked++
	return nil
}

// ReleaseSlot returns a previously reserved slot.
func (r *TourRepository) ReleaseSlot(ctx context.Context, id domaintour.TourID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return domaintour.ErrNotFound
	}
	if t.TotalBooked <= 0 {
		return nil
	}
	t.AvailableSlots++
	t.TotalBooked--
	return nil
}

func cloneTour(t *domaintour.Tour) *domaintour.Tour {
	if t == nil {
		return nil
	}
	copyTour := *t
	copyTour.Tags = append([]string(nil), t.Tags...)
	return &copyTour
}

var _ domaintour.Repository = (*TourRepository)(nil)
