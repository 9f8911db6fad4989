package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"tourway/internal/domain/pricing"
	"tourway/internal/domain/shared/events"
	"tourway/internal/domain/shared/money"
	"tourway/internal/domain/tour"
	"tourway/internal/domain/user"
)

var (
	ErrNotFound           = errors.New("booking: not found")
	ErrInvalidState       = errors.New("booking: invalid state transition")
	ErrNoTravelers        = errors.New("booking: at least one traveler is required")
	ErrTravelerIncomplete = errors.New("booking: traveler name, email, phone, age and gender are required")
	ErrInvalidDateRange   = errors.New("booking: travel start date must precede end date")
	ErrStartInPast        = errors.New("booking: travel start date is in the past")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Terminal reports whether no further transition is allowed from the status.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Traveler struct {
	Name   string
	Email  string
	Phone  string
	Age    int
	Gender Gender
}

type TravelDates struct {
	Start time.Time
	End   time.Time
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentRecord tracks what the payment gateway reported for this booking.
type PaymentRecord struct {
	Method          string
	Status          PaymentStatus
	TransactionID   string
	PaymentIntentID string
	PaidAt          time.Time
	RefundedAt      time.Time
	RefundAmount    money.Money
	RefundReason    string
}

// Cancellation holds the metadata recorded when a booking is cancelled.
type Cancellation struct {
	Reason         string
	Date           time.Time
	RefundAmount   money.Money
	RefundPercent  int64
	RefundEligible bool
}

// Booking is one traveler group's reservation for a tour offering. Its
// pricing snapshot is immutable history: the underlying tour price may
// change later without affecting it.
type Booking struct {
	ID              BookingID
	Reference       string
	TourID          tour.TourID
	UserID          user.ID
	Travelers       []Traveler
	Dates           TravelDates
	Price           pricing.Snapshot
	Payment         PaymentRecord
	Status          Status
	SpecialRequests string
	Cancellation    *Cancellation
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id BookingID) error
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

type ListFilter struct {
	Status Status
	UserID user.ID
	Limit  int
	Offset int
}

type CreateParams struct {
	ID              BookingID
	TourID          tour.TourID
	UserID          user.ID
	Travelers       []Traveler
	Dates           TravelDates
	Price           pricing.Snapshot
	PaymentMethod   string
	SpecialRequests string
	CreatedAt       time.Time
}

// NewBooking validates input and builds a pending booking. Malformed
// travelers and date ranges are rejected here, before anything is persisted.
func NewBooking(params CreateParams) (*Booking, error) {
	if len(params.Travelers) == 0 {
		return nil, ErrNoTravelers
	}
	for _, t := range params.Travelers {
		if err := validateTraveler(t); err != nil {
			return nil, err
		}
	}
	if err := ValidateDates(params.Dates, params.CreatedAt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, errors.New("booking: user id required")
	}

	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		Reference: NewReference(now),
		TourID:    params.TourID,
		UserID:    params.UserID,
		Travelers: append([]Traveler(nil), params.Travelers...),
		Dates:     params.Dates,
		Price:     params.Price,
		Payment: PaymentRecord{
			Method: params.PaymentMethod,
			Status: PaymentPending,
		},
		Status:          StatusPending,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed after a successful charge,
// recording the gateway identifiers.
func (b *Booking) Confirm(transactionID, paymentIntentID string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Payment.TransactionID = transactionID
	b.Payment.PaymentIntentID = paymentIntentID
	b.Payment.Status = PaymentCompleted
	b.Payment.PaidAt = now.UTC()
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, Reference: b.Reference, TourID: b.TourID, UserID: b.UserID, Total: b.Price.TotalAmount, At: b.UpdatedAt})
	return nil
}

// Cancel applies the refund quote and moves the booking to its terminal
// cancelled state. Already-terminal bookings are rejected.
func (b *Booking) Cancel(reason string, quote pricing.RefundQuote, now time.Time) error {
	if b.Status.Terminal() {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.Cancellation = &Cancellation{
		Reason:         strings.TrimSpace(reason),
		Date:           now.UTC(),
		RefundAmount:   quote.Amount,
		RefundPercent:  quote.Percent,
		RefundEligible: quote.Eligible,
	}
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reference: b.Reference, TourID: b.TourID, UserID: b.UserID, Refund: quote.Amount, RefundPercent: quote.Percent, Reason: b.Cancellation.Reason, At: b.UpdatedAt})
	return nil
}

// Complete marks a confirmed booking as completed (administrative event).
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, Reference: b.Reference, At: b.UpdatedAt})
	return nil
}

// MarkNoShow records that the travelers never arrived.
func (b *Booking) MarkNoShow(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusNoShow
	b.UpdatedAt = now.UTC()
	b.Record(BookingNoShow{BookingID: b.ID, Reference: b.Reference, At: b.UpdatedAt})
	return nil
}

// ValidateDates rejects inverted ranges and start dates before today.
func ValidateDates(dates TravelDates, now time.Time) error {
	if !dates.Start.Before(dates.End) {
		return ErrInvalidDateRange
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(dates.Start.Year(), dates.Start.Month(), dates.Start.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return ErrStartInPast
	}
	return nil
}

func validateTraveler(t Traveler) error {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Email) == "" || strings.TrimSpace(t.Phone) == "" {
		return ErrTravelerIncomplete
	}
	if t.Age <= 0 {
		return ErrTravelerIncomplete
	}
	switch t.Gender {
	case GenderMale, GenderFemale, GenderOther:
		return nil
	default:
		return ErrTravelerIncomplete
	}
}
