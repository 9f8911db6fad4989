package booking

import (
	"time"

	"tourway/internal/app/policies"
	domainbooking "tourway/internal/domain/booking"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

func notification(b *domainbooking.Booking, usr *domainuser.User, t *domaintour.Tour) policies.BookingNotification {
	n := policies.BookingNotification{
		Reference:   b.Reference,
		UserName:    usr.Name,
		UserEmail:   usr.Email,
		TourTitle:   t.Title,
		Destination: t.Destination,
		TravelStart: b.Dates.Start.Format(time.DateOnly),
		TravelEnd:   b.Dates.End.Format(time.DateOnly),
		Travelers:   len(b.Travelers),
		TotalAmount: b.Price.TotalAmount.String(),
	}
	if b.Cancellation != nil {
		n.RefundAmount = b.Cancellation.RefundAmount.String()
		n.RefundPercent = b.Cancellation.RefundPercent
		n.CancelReason = b.Cancellation.Reason
	}
	return n
}
