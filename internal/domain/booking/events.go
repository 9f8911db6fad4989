package booking

import (
	"time"

	"tourway/internal/domain/shared/money"
	"tourway/internal/domain/tour"
	"tourway/internal/domain/user"
)

type BookingConfirmed struct {
	BookingID BookingID
	Reference string
	TourID    tour.TourID
	UserID    user.ID
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     BookingID
	Reference     string
	TourID        tour.TourID
	UserID        user.ID
	Refund        money.Money
	RefundPercent int64
	Reason        string
	At            time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	Reference string
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingNoShow struct {
	BookingID BookingID
	Reference string
	At        time.Time
}

func (e BookingNoShow) EventName() string     { return "booking.no_show" }
func (e BookingNoShow) AggregateID() string   { return string(e.BookingID) }
func (e BookingNoShow) OccurredAt() time.Time { return e.At }
