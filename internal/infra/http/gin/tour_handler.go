package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tourway/internal/app/commands"
	toursapp "tourway/internal/app/handlers/tours"
	"tourway/internal/app/policies"
	"tourway/internal/app/queries"
	"tourway/internal/domain/shared/money"
	domaintour "tourway/internal/domain/tour"
)

type TourHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// Catalog serves the public tour search.
func (h TourHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := toursapp.SearchToursQuery{
		Destination:  c.Query("destination"),
		Country:      c.Query("country"),
		Difficulty:   c.Query("difficulty"),
		PriceMin:     parseMoneyAmount(c.Query("price_min")),
		PriceMax:     parseMoneyAmount(c.Query("price_max")),
		FeaturedOnly: c.Query("featured") == "true",
		Limit:        parsePositiveInt(c.Query("limit"), 20),
		Offset:       parsePositiveInt(c.Query("offset"), 0),
	}
	items, err := queries.Ask[toursapp.SearchToursQuery, []*domaintour.Tour](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]tourResponse, 0, len(items))
	for _, t := range items {
		out = append(out, newTourResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (h TourHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := toursapp.GetTourQuery{TourID: c.Param("id")}
	t, err := queries.Ask[toursapp.GetTourQuery, *domaintour.Tour](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domaintour.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tour not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newTourResponse(t))
}

type tourInputRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Destination        string   `json:"destination"`
	Country            string   `json:"country"`
	DurationDays       int      `json:"duration_days"`
	Price              int64    `json:"price"`
	Currency           string   `json:"currency"`
	DiscountPercent    int64    `json:"discount_percent"`
	Difficulty         string   `json:"difficulty"`
	CancellationPolicy string   `json:"cancellation_policy"`
	Tags               []string `json:"tags"`
	IsFeatured         bool     `json:"is_featured"`
}

type createTourRequest struct {
	tourInputRequest
	MaxGroupSize int `json:"max_group_size"`
}

func (r tourInputRequest) toInput() toursapp.TourInput {
	return toursapp.TourInput{
		Title:              r.Title,
		Description:        r.Description,
		Destination:        r.Destination,
		Country:            r.Country,
		DurationDays:       r.DurationDays,
		PriceAmount:        r.Price,
		Currency:           r.Currency,
		DiscountPercent:    r.DiscountPercent,
		Difficulty:         r.Difficulty,
		CancellationPolicy: r.CancellationPolicy,
		Tags:               r.Tags,
		IsFeatured:         r.IsFeatured,
	}
}

// Create puts a new tour on sale.
func (h TourHandler) Create(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := toursapp.CreateTourCommand{
		TourID:       uuid.NewString(),
		MaxGroupSize: req.MaxGroupSize,
		ActorID:      p.ID,
		TourInput:    req.toInput(),
	}
	result, err := commands.Dispatch[toursapp.CreateTourCommand, *toursapp.CreateTourResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Update edits an existing tour's catalog fields.
func (h TourHandler) Update(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req tourInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := toursapp.UpdateTourCommand{
		TourID:    c.Param("id"),
		ActorID:   p.ID,
		TourInput: req.toInput(),
	}
	result, err := commands.Dispatch[toursapp.UpdateTourCommand, *toursapp.UpdateTourResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Deactivate takes a tour off sale.
func (h TourHandler) Deactivate(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := toursapp.DeactivateTourCommand{TourID: c.Param("id"), ActorID: p.ID}
	result, err := commands.Dispatch[toursapp.DeactivateTourCommand, *toursapp.DeactivateTourResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TourHandler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domaintour.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, policies.ErrAdminRequired):
		status = http.StatusForbidden
	case errors.Is(err, domaintour.ErrTitleNeeded),
		errors.Is(err, domaintour.ErrNoCapacity),
		errors.Is(err, money.ErrInvalidCurrency):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	if h.Logger != nil && status >= http.StatusInternalServerError {
		h.Logger.Error("tour operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type tourResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Destination        string    `json:"destination"`
	Country            string    `json:"country"`
	DurationDays       int       `json:"duration_days"`
	Price              int64     `json:"price"`
	Currency           string    `json:"currency"`
	DiscountPercent    int64     `json:"discount_percent"`
	Difficulty         string    `json:"difficulty"`
	MaxGroupSize       int       `json:"max_group_size"`
	AvailableSlots     int       `json:"available_slots"`
	CancellationPolicy string    `json:"cancellation_policy,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	RatingAverage      float64   `json:"rating_average"`
	RatingCount        int       `json:"rating_count"`
	IsFeatured         bool      `json:"is_featured"`
	CreatedAt          time.Time `json:"created_at"`
}

func newTourResponse(t *domaintour.Tour) tourResponse {
	return tourResponse{
		ID:                 string(t.ID),
		Title:              t.Title,
		Description:        t.Description,
		Destination:        t.Destination,
		Country:            t.Country,
		DurationDays:       t.DurationDays,
		Price:              t.Price.Amount,
		Currency:           t.Price.Currency,
		DiscountPercent:    t.DiscountPercent,
		Difficulty:         string(t.Difficulty),
		MaxGroupSize:       t.MaxGroupSize,
		AvailableSlots:     t.AvailableSlots,
		CancellationPolicy: t.CancellationPolicy,
		Tags:               t.Tags,
		RatingAverage:      t.RatingAverage,
		RatingCount:        t.RatingCount,
		IsFeatured:         t.IsFeatured,
		CreatedAt:          t.CreatedAt,
	}
}

func parseMoneyAmount(raw string) int64 {
	if raw == "" {
		return 0
	}
	v := parsePositiveInt(raw, 0)
	return int64(v)
}
