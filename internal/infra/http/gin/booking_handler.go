package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tourway/internal/app/commands"
	bookingapp "tourway/internal/app/handlers/booking"
	"tourway/internal/app/policies"
	"tourway/internal/app/queries"
	"tourway/internal/app/services/documents"
	domainbooking "tourway/internal/domain/booking"
	domainpricing "tourway/internal/domain/pricing"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Vouchers *documents.Service
	Logger   *slog.Logger
}

type createBookingRequest struct {
	TourID          string                     `json:"tour_id"`
	Travelers       []bookingapp.TravelerInput `json:"travelers"`
	TravelStart     time.Time                  `json:"travel_start"`
	TravelEnd       time.Time                  `json:"travel_end"`
	PaymentMethod   string                     `json:"payment_method"`
	SpecialRequests string                     `json:"special_requests"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		TourID:          req.TourID,
		UserID:          p.ID,
		Travelers:       req.Travelers,
		TravelStart:     req.TravelStart,
		TravelEnd:       req.TravelEnd,
		PaymentMethod:   req.PaymentMethod,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	query := bookingapp.GetBookingQuery{BookingID: c.Param("id"), UserID: p.ID}
	b, err := queries.Ask[bookingapp.GetBookingQuery, *domainbooking.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// ListMine returns the authenticated traveler's bookings.
func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	query := bookingapp.ListBookingsQuery{OwnerID: p.ID}
	items, err := queries.Ask[bookingapp.ListBookingsQuery, []*domainbooking.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingCollection(items))
}

// List is the admin-wide listing with optional status and user filters.
func (h BookingHandler) List(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	query := bookingapp.ListBookingsQuery{
		Status:  c.Query("status"),
		UserID:  c.Query("user_id"),
		Limit:   parsePositiveInt(c.Query("limit"), 50),
		Offset:  parsePositiveInt(c.Query("offset"), 0),
		ActorID: p.ID,
	}
	items, err := queries.Ask[bookingapp.ListBookingsQuery, []*domainbooking.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingCollection(items))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
		UserID:    p.ID,
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.UpdateStatusCommand{
		BookingID: c.Param("id"),
		Status:    req.Status,
		Notes:     req.Notes,
		ActorID:   p.ID,
	}
	result, err := commands.Dispatch[bookingapp.UpdateStatusCommand, *bookingapp.UpdateStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Voucher issues a shareable booking voucher document.
func (h BookingHandler) Voucher(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Vouchers == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vouchers unavailable"})
		return
	}
	voucher, err := h.Vouchers.IssueVoucher(c.Request.Context(), c.Param("id"), domainuser.ID(p.ID))
	if err != nil {
		if errors.Is(err, documents.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voucher)
}

func (h BookingHandler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domaintour.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, bookingapp.ErrForbidden),
		errors.Is(err, policies.ErrAdminRequired):
		status = http.StatusForbidden
	case errors.Is(err, domaintour.ErrSoldOut),
		errors.Is(err, domainbooking.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, bookingapp.ErrPaymentFailed):
		status = http.StatusPaymentRequired
	case errors.Is(err, policies.ErrUnsupportedMethod),
		errors.Is(err, domainbooking.ErrNoTravelers),
		errors.Is(err, domainbooking.ErrTravelerIncomplete),
		errors.Is(err, domainbooking.ErrInvalidDateRange),
		errors.Is(err, domainbooking.ErrStartInPast),
		errors.Is(err, domainpricing.ErrNegativeBasePrice),
		errors.Is(err, domainpricing.ErrInvalidDiscount):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	if h.Logger != nil && status >= http.StatusInternalServerError {
		h.Logger.Error("booking operation failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type bookingResponse struct {
	ID              string                     `json:"id"`
	Reference       string                     `json:"reference"`
	TourID          string                     `json:"tour_id"`
	UserID          string                     `json:"user_id"`
	Travelers       []bookingapp.TravelerInput `json:"travelers"`
	TravelStart     time.Time                  `json:"travel_start"`
	TravelEnd       time.Time                  `json:"travel_end"`
	Price           domainpricing.Snapshot     `json:"price"`
	Status          string                     `json:"status"`
	PaymentStatus   string                     `json:"payment_status"`
	PaymentMethod   string                     `json:"payment_method"`
	SpecialRequests string                     `json:"special_requests,omitempty"`
	Cancellation    *cancellationResponse      `json:"cancellation,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

type cancellationResponse struct {
	Reason         string    `json:"reason"`
	Date           time.Time `json:"date"`
	RefundAmount   int64     `json:"refund_amount"`
	RefundPercent  int64     `json:"refund_percent"`
	RefundEligible bool      `json:"refund_eligible"`
}

func newBookingResponse(b *domainbooking.Booking) bookingResponse {
	travelers := make([]bookingapp.TravelerInput, 0, len(b.Travelers))
	for _, t := range b.Travelers {
		travelers = append(travelers, bookingapp.TravelerInput{
			Name:   t.Name,
			Email:  t.Email,
			Phone:  t.Phone,
			Age:    t.Age,
			Gender: string(t.Gender),
		})
	}
	resp := bookingResponse{
		ID:              string(b.ID),
		Reference:       b.Reference,
		TourID:          string(b.TourID),
		UserID:          string(b.UserID),
		Travelers:       travelers,
		TravelStart:     b.Dates.Start,
		TravelEnd:       b.Dates.End,
		Price:           b.Price,
		Status:          string(b.Status),
		PaymentStatus:   string(b.Payment.Status),
		PaymentMethod:   b.Payment.Method,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Cancellation != nil {
		resp.Cancellation = &cancellationResponse{
			Reason:         b.Cancellation.Reason,
			Date:           b.Cancellation.Date,
			RefundAmount:   b.Cancellation.RefundAmount.Amount,
			RefundPercent:  b.Cancellation.RefundPercent,
			RefundEligible: b.Cancellation.RefundEligible,
		}
	}
	return resp
}

func newBookingCollection(items []*domainbooking.Booking) gin.H {
	out := make([]bookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, newBookingResponse(b))
	}
	return gin.H{"items": out, "total": len(out)}
}

func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
