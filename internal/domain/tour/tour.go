package tour

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourway/internal/domain/shared/money"
)

var (
	ErrNotFound    = errors.New("tour: not found")
	ErrNotActive   = errors.New("tour: not active")
	ErrSoldOut     = errors.New("tour: no available slots")
	ErrNoCapacity  = errors.New("tour: max group size must be positive")
	ErrTitleNeeded = errors.New("tour: title is required")
)

type TourID string

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
	DifficultyExtreme     Difficulty = "extreme"
)

// Tour is a sellable travel package with a price, discount and finite capacity.
type Tour struct {
	ID                 TourID
	Title              string
	Description        string
	Destination        string
	Country            string
	DurationDays       int
	Price              money.Money
	DiscountPercent    int64
	Difficulty         Difficulty
	MaxGroupSize       int
	CancellationPolicy string
	Tags               []string

	// Capacity counter pair. AvailableSlots never goes below zero;
	// TotalBooked counts confirmed bookings.
	TotalBooked    int
	AvailableSlots int

	RatingAverage float64
	RatingCount   int

	IsActive   bool
	IsFeatured bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateParams struct {
	ID                 TourID
	Title              string
	Description        string
	Destination        string
	Country            string
	DurationDays       int
	Price              money.Money
	DiscountPercent    int64
	Difficulty         Difficulty
	MaxGroupSize       int
	CancellationPolicy string
	Tags               []string
	CreatedAt          time.Time
}

func NewTour(params CreateParams) (*Tour, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleNeeded
	}
	if params.MaxGroupSize <= 0 {
		return nil, ErrNoCapacity
	}
	difficulty := params.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}
	now := params.CreatedAt.UTC()
	return &Tour{
		ID:                 params.ID,
		Title:              strings.TrimSpace(params.Title),
		Description:        params.Description,
		Destination:        params.Destination,
		Country:            params.Country,
		DurationDays:       params.DurationDays,
		Price:              params.Price,
		DiscountPercent:    params.DiscountPercent,
		Difficulty:         difficulty,
		MaxGroupSize:       params.MaxGroupSize,
		CancellationPolicy: params.CancellationPolicy,
		Tags:               append([]string(nil), params.Tags...),
		AvailableSlots:     params.MaxGroupSize,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

type UpdateParams struct {
	Title              string
	Description        string
	Destination        string
	Country            string
	DurationDays       int
	Price              money.Money
	DiscountPercent    int64
	Difficulty         Difficulty
	CancellationPolicy string
	Tags               []string
	IsFeatured         bool
}

// UpdateDetails replaces the descriptive fields. Capacity is deliberately
// untouched: MaxGroupSize and the counter pair belong to the inventory
// ledger, not to catalog edits.
func (t *Tour) UpdateDetails(params UpdateParams, now time.Time) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleNeeded
	}
	difficulty := params.Difficulty
	if difficulty == "" {
		difficulty = t.Difficulty
	}
	t.Title = strings.TrimSpace(params.Title)
	t.Description = params.Description
	t.Destination = params.Destination
	t.Country = params.Country
	t.DurationDays = params.DurationDays
	t.Price = params.Price
	t.DiscountPercent = params.DiscountPercent
	t.Difficulty = difficulty
	t.CancellationPolicy = params.CancellationPolicy
	t.Tags = append([]string(nil), params.Tags...)
	t.IsFeatured = params.IsFeatured
	t.UpdatedAt = now.UTC()
	return nil
}

// Deactivate removes the tour from sale without destroying its history.
func (t *Tour) Deactivate(now time.Time) {
	t.IsActive = false
	t.UpdatedAt = now.UTC()
}

// Bookable reports whether the tour can take new bookings at all. The
// authoritative capacity check is the atomic ReserveSlot in the repository;
// this is only the early exit used by the booking flow.
func (t *Tour) Bookable() bool {
	return t.IsActive && t.AvailableSlots > 0
}

// ApplyRating folds a new review rating into the running average.
func (t *Tour) ApplyRating(rating int, now time.Time) {
	sum := t.RatingAverage*float64(t.RatingCount) + float64(rating)
	t.RatingCount++
	t.RatingAverage = sum / float64(t.RatingCount)
	t.UpdatedAt = now.UTC()
}

// SearchParams filter the tour catalog.
type SearchParams struct {
	Destination  string
	Country      string
	Difficulty   Difficulty
	PriceMin     int64
	PriceMax     int64
	FeaturedOnly bool
	OnlyActive   bool
	Limit        int
	Offset       int
}

// Repository is the storage contract for tour offerings. ReserveSlot and
// ReleaseSlot are the inventory ledger: both must be single atomic storage
// operations, never read-modify-write at the application layer.
type Repository interface {
	ByID(ctx context.Context, id TourID) (*Tour, error)
	Save(ctx context.Context, t *Tour) error
	Search(ctx context.Context, params SearchParams) ([]*Tour, error)

	// ReserveSlot decrements AvailableSlots and increments TotalBooked,
	// failing with ErrSoldOut when no slot remains. The check and the
	// decrement happen in one atomic operation.
	ReserveSlot(ctx context.Context, id TourID) error

	// ReleaseSlot returns a slot reserved earlier: increments
	// AvailableSlots and decrements TotalBooked.
	ReleaseSlot(ctx context.Context, id TourID) error
}
