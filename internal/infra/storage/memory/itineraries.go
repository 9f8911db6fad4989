package memory

import (
	"context"
	"sort"
	"sync"

	domainitinerary "tourway/internal/domain/itinerary"
)

// ItineraryRepository is an in-memory implementation for tests and local runs.
type ItineraryRepository struct {
	mu    sync.RWMutex
	items map[domainitinerary.ItineraryID]*domainitinerary.Itinerary
}

// NewItineraryRepository builds an empty repository.
func NewItineraryRepository() *ItineraryRepository {
	return &ItineraryRepository{items: make(map[domainitinerary.ItineraryID]*domainitinerary.Itinerary)}
}

func (r *ItineraryRepository) ByID(ctx context.Context, id domainitinerary.ItineraryID) (*domainitinerary.Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, domainitinerary.ErrNotFound
	}
	return cloneItinerary(it), nil
}

func (r *ItineraryRepository) Save(ctx context.Context, it *domainitinerary.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = cloneItinerary(it)
	return nil
}

// ListByOwner returns the owner's active plans in the requested status,
// newest first.
func (r *ItineraryRepository) ListByOwner(ctx context.Context, filter domainitinerary.ListFilter) ([]*domainitinerary.Itinerary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainitinerary.Itinerary, 0, len(r.items))
	for _, it := range r.items {
		if !it.IsActive {
			continue
		}
		if it.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		matches = append(matches, cloneItinerary(it))
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}
	return matches[start:end], nil
}

func cloneItinerary(it *domainitinerary.Itinerary) *domainitinerary.Itinerary {
	if it == nil {
		return nil
	}
	copyIt := *it
	copyIt.TravelStyle = append([]string(nil), it.TravelStyle...)
	copyIt.Interests = append([]string(nil), it.Interests...)
	copyIt.Tags = append([]string(nil), it.Tags...)
	copyIt.Days = make([]domainitinerary.Day, len(it.Days))
	for i, d := range it.Days {
		day := d
		day.Activities = append([]domainitinerary.Activity(nil), d.Activities...)
		copyIt.Days[i] = day
	}
	return &copyIt
}

var _ domainitinerary.Repository = (*ItineraryRepository)(nil)
