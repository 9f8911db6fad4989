package itinerary

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainuser "tourway/internal/domain/user"
)

var (
	ErrNotFound            = errors.New("itinerary: not found")
	ErrTitleRequired       = errors.New("itinerary: title is required")
	ErrTitleTooLong        = errors.New("itinerary: title exceeds 100 characters")
	ErrDestinationRequired = errors.New("itinerary: destination is required")
	ErrCountryRequired     = errors.New("itinerary: country is required")
	ErrNoAdults            = errors.New("itinerary: at least one adult traveler required")
	ErrInvalidDateRange    = errors.New("itinerary: end date before start date")
	ErrInvalidStatus       = errors.New("itinerary: unknown status")
)

type ItineraryID string

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TravelerCounts describes the travel party. Children and infants ride along
// but every itinerary needs at least one adult.
type TravelerCounts struct {
	Adults   int
	Children int
	Infants  int
}

type Activity struct {
	Name        string
	Description string
	Time        string
	Location    string
	Category    string
}

// Day is one planned day of the trip.
type Day struct {
	Number      int
	Date        time.Time
	Title       string
	Description string
	Activities  []Activity
	Notes       string
}

// Itinerary is a traveler-built trip plan, independent of any tour package.
// Deletion is soft: IsActive flips off and the plan disappears from listings.
type Itinerary struct {
	ID           ItineraryID
	OwnerID      domainuser.ID
	Title        string
	Description  string
	Destination  string
	Country      string
	DurationDays int
	Start        time.Time
	End          time.Time
	Travelers    TravelerCounts
	TravelStyle  []string
	Interests    []string
	Days         []Day
	Tags         []string
	IsPublic     bool
	Status       Status
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateParams struct {
	ID          ItineraryID
	OwnerID     domainuser.ID
	Title       string
	Description string
	Destination string
	Country     string
	Start       time.Time
	End         time.Time
	Travelers   TravelerCounts
	TravelStyle []string
	Interests   []string
	Days        []Day
	Tags        []string
	IsPublic    bool
	CreatedAt   time.Time
}

func New(params CreateParams) (*Itinerary, error) {
	title := strings.TrimSpace(params.Title)
	if err := validateDetails(title, params.Destination, params.Country, params.Travelers, params.Start, params.End); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	return &Itinerary{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Title:        title,
		Description:  params.Description,
		Destination:  strings.TrimSpace(params.Destination),
		Country:      strings.TrimSpace(params.Country),
		DurationDays: durationFromDays(params.Days),
		Start:        params.Start,
		End:          params.End,
		Travelers:    params.Travelers,
		TravelStyle:  append([]string(nil), params.TravelStyle...),
		Interests:    append([]string(nil), params.Interests...),
		Days:         append([]Day(nil), params.Days...),
		Tags:         append([]string(nil), params.Tags...),
		IsPublic:     params.IsPublic,
		Status:       StatusDraft,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type UpdateParams struct {
	Title       string
	Description string
	Destination string
	Country     string
	Start       time.Time
	End         time.Time
	Travelers   TravelerCounts
	TravelStyle []string
	Interests   []string
	Days        []Day
	Tags        []string
	IsPublic    bool
	Status      Status
}

// Update replaces the plan's contents. The day count drives the duration the
// same way it does on creation.
func (it *Itinerary) Update(params UpdateParams, now time.Time) error {
	title := strings.TrimSpace(params.Title)
	if err := validateDetails(title, params.Destination, params.Country, params.Travelers, params.Start, params.End); err != nil {
		return err
	}
	status := params.Status
	if status == "" {
		status = it.Status
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	it.Title = title
	it.Description = params.Description
	it.Destination = strings.TrimSpace(params.Destination)
	it.Country = strings.TrimSpace(params.Country)
	it.Start = params.Start
	it.End = params.End
	it.Travelers = params.Travelers
	it.TravelStyle = append([]string(nil), params.TravelStyle...)
	it.Interests = append([]string(nil), params.Interests...)
	it.Days = append([]Day(nil), params.Days...)
	it.Tags = append([]string(nil), params.Tags...)
	it.IsPublic = params.IsPublic
	it.Status = status
	it.DurationDays = durationFromDays(it.Days)
	it.UpdatedAt = now.UTC()
	return nil
}

// Deactivate soft-deletes the plan.
func (it *Itinerary) Deactivate(now time.Time) {
	it.IsActive = false
	it.UpdatedAt = now.UTC()
}

// VisibleTo reports whether the given user may read the plan.
func (it *Itinerary) VisibleTo(id domainuser.ID) bool {
	return it.IsPublic || it.OwnerID == id
}

func validateDetails(title, destination, country string, travelers TravelerCounts, start, end time.Time) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > 100 {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(destination) == "" {
		return ErrDestinationRequired
	}
	if strings.TrimSpace(country) == "" {
		return ErrCountryRequired
	}
	if travelers.Adults < 1 {
		return ErrNoAdults
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func durationFromDays(days []Day) int {
	if len(days) > 0 {
		return len(days)
	}
	return 1
}

// ListFilter scopes a listing to one owner's active plans.
type ListFilter struct {
	OwnerID domainuser.ID
	Status  Status
	Limit   int
	Offset  int
}

type Repository interface {
	ByID(ctx context.Context, id ItineraryID) (*Itinerary, error)
	Save(ctx context.Context, it *Itinerary) error
	ListByOwner(ctx context.Context, filter ListFilter) ([]*Itinerary, error)
}
