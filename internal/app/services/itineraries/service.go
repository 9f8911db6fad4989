package itineraries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainitinerary "tourway/internal/domain/itinerary"
	domainuser "tourway/internal/domain/user"
)

var ErrForbidden = errors.New("itineraries: not allowed")

// Service is the custom trip planner: travelers assemble their own
// day-by-day plans next to the packaged tour catalog. Plans are private to
// their owner unless marked public.
type Service struct {
	Itineraries domainitinerary.Repository
	Now         func() time.Time
	Logger      *slog.Logger
}

type DraftParams struct {
	Title       string
	Description string
	Destination string
	Country     string
	Start       time.Time
	End         time.Time
	Travelers   domainitinerary.TravelerCounts
	TravelStyle []string
	Interests   []string
	Days        []domainitinerary.Day
	Tags        []string
	IsPublic    bool
}

func (s *Service) Create(ctx context.Context, ownerID domainuser.ID, params DraftParams) (*domainitinerary.Itinerary, error) {
	it, err := domainitinerary.New(domainitinerary.CreateParams{
		ID:          domainitinerary.ItineraryID(uuid.NewString()),
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		Destination: params.Destination,
		Country:     params.Country,
		Start:       params.Start,
		End:         params.End,
		Travelers:   params.Travelers,
		TravelStyle: params.TravelStyle,
		Interests:   params.Interests,
		Days:        params.Days,
		Tags:        params.Tags,
		IsPublic:    params.IsPublic,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Itineraries.Save(ctx, it); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("itinerary created", "itinerary_id", it.ID, "owner_id", it.OwnerID)
	}
	return it, nil
}

// Get returns a plan to its owner, or to anyone when the plan is public.
// Deactivated plans read as missing.
func (s *Service) Get(ctx context.Context, id domainitinerary.ItineraryID, requesterID domainuser.ID) (*domainitinerary.Itinerary, error) {
	it, err := s.Itineraries.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsActive {
		return nil, domainitinerary.ErrNotFound
	}
	if !it.VisibleTo(requesterID) {
		return nil, ErrForbidden
	}
	return it, nil
}

// ListMine returns the requester's active plans, drafts by default.
func (s *Service) ListMine(ctx context.Context, ownerID domainuser.ID, status domainitinerary.Status, limit, offset int) ([]*domainitinerary.Itinerary, error) {
	if status == "" {
		status = domainitinerary.StatusDraft
	}
	if !status.Valid() {
		return nil, domainitinerary.ErrInvalidStatus
	}
	return s.Itineraries.ListByOwner(ctx, domainitinerary.ListFilter{
		OwnerID: ownerID,
		Status:  status,
		Limit:   limit,
		Offset:  offset,
	})
}

type UpdateParams struct {
	DraftParams
	Status domainitinerary.Status
}

func (s *Service) Update(ctx context.Context, id domainitinerary.ItineraryID, requesterID domainuser.ID, params UpdateParams) (*domainitinerary.Itinerary, error) {
	it, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	err = it.Update(domainitinerary.UpdateParams{
		Title:       params.Title,
		Description: params.Description,
		Destination: params.Destination,
		Country:     params.Country,
		Start:       params.Start,
		End:         params.End,
		Travelers:   params.Travelers,
		TravelStyle: params.TravelStyle,
		Interests:   params.Interests,
		Days:        params.Days,
		Tags:        params.Tags,
		IsPublic:    params.IsPublic,
		Status:      params.Status,
	}, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Itineraries.Save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Delete soft-deletes the plan so it drops out of listings but keeps its
// history in storage.
func (s *Service) Delete(ctx context.Context, id domainitinerary.ItineraryID, requesterID domainuser.ID) error {
	it, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return err
	}
	it.Deactivate(s.now())
	if err := s.Itineraries.Save(ctx, it); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("itinerary deactivated", "itinerary_id", it.ID)
	}
	return nil
}

// owned loads an active plan and enforces owner-only writes. Public plans
// are readable by anyone but writable only by their owner.
func (s *Service) owned(ctx context.Context, id domainitinerary.ItineraryID, requesterID domainuser.ID) (*domainitinerary.Itinerary, error) {
	it, err := s.Itineraries.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsActive {
		return nil, domainitinerary.ErrNotFound
	}
	if it.OwnerID != requesterID {
		return nil, ErrForbidden
	}
	return it, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
