package policies

import "context"

// BookingNotification carries the display fields the notification templates
// need; handlers populate it from the booking, user and tour records.
type BookingNotification struct {
	Reference     string
	UserName      string
	UserEmail     string
	TourTitle     string
	Destination   string
	TravelStart   string
	TravelEnd     string
	Travelers     int
	TotalAmount   string
	RefundAmount  string
	RefundPercent int64
	CancelReason  string
}

// Notifier delivers booking lifecycle messages. Both calls are best-effort
// from the caller's perspective: failures are logged, never propagated as
// the operation's error.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, n BookingNotification) error
	SendBookingCancellation(ctx context.Context, n BookingNotification) error
}
