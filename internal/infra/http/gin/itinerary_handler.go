package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"tourway/internal/app/services/itineraries"
	domainitinerary "tourway/internal/domain/itinerary"
	domainuser "tourway/internal/domain/user"
)

// ItineraryHandler exposes the custom trip planner.
type ItineraryHandler struct {
	Service *itineraries.Service
	Logger  *slog.Logger
}

type itineraryRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Destination string                `json:"destination"`
	Country     string                `json:"country"`
	Start       time.Time             `json:"start_date"`
	End         time.Time             `json:"end_date"`
	Travelers   itineraryTravelers    `json:"travelers"`
	TravelStyle []string              `json:"travel_style"`
	Interests   []string              `json:"interests"`
	Days        []itineraryDayRequest `json:"days"`
	Tags        []string              `json:"tags"`
	IsPublic    bool                  `json:"is_public"`
	Status      string                `json:"status"`
}

type itineraryTravelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type itineraryDayRequest struct {
	Number      int                        `json:"number"`
	Date        time.Time                  `json:"date"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Activities  []itineraryActivityRequest `json:"activities"`
	Notes       string                     `json:"notes"`
}

type itineraryActivityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Category    string `json:"category"`
}

func (r itineraryRequest) toDraft() itineraries.DraftParams {
	return itineraries.DraftParams{
		Title:       r.Title,
		Description: r.Description,
		Destination: r.Destination,
		Country:     r.Country,
		Start:       r.Start,
		End:         r.End,
		Travelers: domainitinerary.TravelerCounts{
			Adults:   r.Travelers.Adults,
			Children: r.Travelers.Children,
			Infants:  r.Travelers.Infants,
		},
		TravelStyle: r.TravelStyle,
		Interests:   r.Interests,
		Days:        toDomainDays(r.Days),
		Tags:        r.Tags,
		IsPublic:    r.IsPublic,
	}
}

func toDomainDays(days []itineraryDayRequest) []domainitinerary.Day {
	out := make([]domainitinerary.Day, len(days))
	for i, d := range days {
		activities := make([]domainitinerary.Activity, len(d.Activities))
		for j, a := range d.Activities {
			activities[j] = domainitinerary.Activity{
				Name:        a.Name,
				Description: a.Description,
				Time:        a.Time,
				Location:    a.Location,
				Category:    a.Category,
			}
		}
		out[i] = domainitinerary.Day{
			Number:      d.Number,
			Date:        d.Date,
			Title:       d.Title,
			Description: d.Description,
			Activities:  activities,
			Notes:       d.Notes,
		}
	}
	return out
}

func (h ItineraryHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req itineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := h.Service.Create(c.Request.Context(), domainuser.ID(p.ID), req.toDraft())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newItineraryResponse(it))
}

func (h ItineraryHandler) Get(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	it, err := h.Service.Get(c.Request.Context(), domainitinerary.ItineraryID(c.Param("id")), domainuser.ID(p.ID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newItineraryResponse(it))
}

// ListMine returns the requester's plans, drafts unless a status filter says
// otherwise.
func (h ItineraryHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.Service.ListMine(
		c.Request.Context(),
		domainuser.ID(p.ID),
		domainitinerary.Status(c.Query("status")),
		parsePositiveInt(c.Query("limit"), 20),
		parsePositiveInt(c.Query("offset"), 0),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]itineraryResponse, 0, len(items))
	for _, it := range items {
		out = append(out, newItineraryResponse(it))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (h ItineraryHandler) Update(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req itineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := h.Service.Update(
		c.Request.Context(),
		domainitinerary.ItineraryID(c.Param("id")),
		domainuser.ID(p.ID),
		itineraries.UpdateParams{DraftParams: req.toDraft(), Status: domainitinerary.Status(req.Status)},
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newItineraryResponse(it))
}

func (h ItineraryHandler) Delete(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	err := h.Service.Delete(c.Request.Context(), domainitinerary.ItineraryID(c.Param("id")), domainuser.ID(p.ID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h ItineraryHandler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainitinerary.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, itineraries.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domainitinerary.ErrTitleRequired),
		errors.Is(err, domainitinerary.ErrTitleTooLong),
		errors.Is(err, domainitinerary.ErrDestinationRequired),
		errors.Is(err, domainitinerary.ErrCountryRequired),
		errors.Is(err, domainitinerary.ErrNoAdults),
		errors.Is(err, domainitinerary.ErrInvalidDateRange),
		errors.Is(err, domainitinerary.ErrInvalidStatus):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	if h.Logger != nil && status >= http.StatusInternalServerError {
		h.Logger.Error("itinerary operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type itineraryResponse struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Destination  string                `json:"destination"`
	Country      string                `json:"country"`
	DurationDays int                   `json:"duration_days"`
	Start        time.Time             `json:"start_date,omitempty"`
	End          time.Time             `json:"end_date,omitempty"`
	Travelers    itineraryTravelers    `json:"travelers"`
	TravelStyle  []string              `json:"travel_style,omitempty"`
	Interests    []string              `json:"interests,omitempty"`
	Days         []itineraryDayRequest `json:"days"`
	Tags         []string              `json:"tags,omitempty"`
	IsPublic     bool                  `json:"is_public"`
	Status       string                `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func newItineraryResponse(it *domainitinerary.Itinerary) itineraryResponse {
	days := make([]itineraryDayRequest, len(it.Days))
	for i, d := range it.Days {
		activities := make([]itineraryActivityRequest, len(d.Activities))
		for j, a := range d.Activities {
			activities[j] = itineraryActivityRequest{
				Name:        a.Name,
				Description: a.Description,
				Time:        a.Time,
				Location:    a.Location,
				Category:    a.Category,
			}
		}
		days[i] = itineraryDayRequest{
			Number:      d.Number,
			Date:        d.Date,
			Title:       d.Title,
			Description: d.Description,
			Activities:  activities,
			Notes:       d.Notes,
		}
	}
	return itineraryResponse{
		ID:           string(it.ID),
		OwnerID:      string(it.OwnerID),
		Title:        it.Title,
		Description:  it.Description,
		Destination:  it.Destination,
		Country:      it.Country,
		DurationDays: it.DurationDays,
		Start:        it.Start,
		End:          it.End,
		Travelers: itineraryTravelers{
			Adults:   it.Travelers.Adults,
			Children: it.Travelers.Children,
			Infants:  it.Travelers.Infants,
		},
		TravelStyle: it.TravelStyle,
		Interests:   it.Interests,
		Days:        days,
		Tags:        it.Tags,
		IsPublic:    it.IsPublic,
		Status:      string(it.Status),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
