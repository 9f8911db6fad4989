package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tourway/internal/app/commands"
	reviewsapp "tourway/internal/app/handlers/reviews"
	"tourway/internal/app/queries"
	domainreviews "tourway/internal/domain/reviews"
	domaintour "tourway/internal/domain/tour"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	tourID := c.Param("id")
	if tourID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tour id is required"})
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		ReviewID:  uuid.NewString(),
		TourID:    tourID,
		UserID:    p.ID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Text:      req.Text,
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, *reviewsapp.SubmitReviewResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondSubmitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) respondSubmitError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainreviews.ErrInvalidRating):
		status = http.StatusBadRequest
	case errors.Is(err, domainreviews.ErrAlreadyReviewed):
		status = http.StatusConflict
	case errors.Is(err, domaintour.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	if h.Logger != nil && status >= http.StatusInternalServerError {
		h.Logger.Error("review submit failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h ReviewHandler) ListByTour(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := reviewsapp.ListReviewsQuery{
		TourID: c.Param("id"),
		Limit:  parsePositiveInt(c.Query("limit"), 20),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}
	items, err := queries.Ask[reviewsapp.ListReviewsQuery, []*domainreviews.Review](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]reviewResponse, 0, len(items))
	for _, r := range items {
		out = append(out, newReviewResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

type reviewResponse struct {
	ID        string    `json:"id"`
	TourID    string    `json:"tour_id"`
	AuthorID  string    `json:"author_id"`
	BookingID string    `json:"booking_id,omitempty"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newReviewResponse(r *domainreviews.Review) reviewResponse {
	return reviewResponse{
		ID:        string(r.ID),
		TourID:    string(r.TourID),
		AuthorID:  string(r.AuthorID),
		BookingID: string(r.BookingID),
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}
