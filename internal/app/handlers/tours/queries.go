package tours

import (
	"context"

	"tourway/internal/app/queries"
	domaintour "tourway/internal/domain/tour"
)

const (
	searchToursKey = "tours.search"
	getTourKey     = "tours.get"
)

type SearchToursQuery struct {
	Destination  string
	Country      string
	Difficulty   string
	PriceMin     int64
	PriceMax     int64
	FeaturedOnly bool
	Limit        int
	Offset       int
}

func (q SearchToursQuery) Key() string { return searchToursKey }

// SearchToursHandler serves the public catalog: only active tours.
type SearchToursHandler struct {
	Tours domaintour.Repository
}

func (h *SearchToursHandler) Handle(ctx context.Context, q SearchToursQuery) ([]*domaintour.Tour, error) {
	return h.Tours.Search(ctx, domaintour.SearchParams{
		Destination:  q.Destination,
		Country:      q.Country,
		Difficulty:   domaintour.Difficulty(q.Difficulty),
		PriceMin:     q.PriceMin,
		PriceMax:     q.PriceMax,
		FeaturedOnly: q.FeaturedOnly,
		OnlyActive:   true,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
}

type GetTourQuery struct {
	TourID string
}

func (q GetTourQuery) Key() string { return getTourKey }

type GetTourHandler struct {
	Tours domaintour.Repository
}

func (h *GetTourHandler) Handle(ctx context.Context, q GetTourQuery) (*domaintour.Tour, error) {
	return h.Tours.ByID(ctx, domaintour.TourID(q.TourID))
}

var _ queries.Handler[SearchToursQuery, []*domaintour.Tour] = (*SearchToursHandler)(nil)
var _ queries.Handler[GetTourQuery, *domaintour.Tour] = (*GetTourHandler)(nil)
