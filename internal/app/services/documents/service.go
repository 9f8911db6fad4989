package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tourway/internal/app/policies"
	domainbooking "tourway/internal/domain/booking"
	domaintour "tourway/internal/domain/tour"
	domainuser "tourway/internal/domain/user"
)

var ErrForbidden = errors.New("documents: not allowed")

// Uploader is the object storage dependency; satisfied by the S3 client.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// Service renders booking vouchers and publishes them to object storage so
// travelers get a shareable document link.
type Service struct {
	Bookings   domainbooking.Repository
	Tours      domaintour.Repository
	Users      domainuser.Repository
	Authorizer policies.Authorizer
	Uploader   Uploader
	Logger     *slog.Logger
}

type Voucher struct {
	BookingID string `json:"booking_id"`
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

// IssueVoucher renders the voucher for a booking and uploads it. Only the
// booking owner or an administrator may request one.
func (s *Service) IssueVoucher(ctx context.Context, bookingID string, requesterID domainuser.ID) (*Voucher, error) {
	b, err := s.Bookings.ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	allowed, err := s.Authorizer.IsOwnerOrAdmin(ctx, b.UserID, requesterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}
	if b.Status != domainbooking.StatusConfirmed && b.Status != domainbooking.StatusCompleted {
		return nil, fmt.Errorf("%w: voucher requires a confirmed booking", domainbooking.ErrInvalidState)
	}

	t, err := s.Tours.ByID(ctx, b.TourID)
	if err != nil {
		return nil, err
	}
	usr, err := s.Users.ByID(ctx, b.UserID)
	if err != nil {
		return nil, err
	}

	body := renderVoucher(b, t, usr)
	key := fmt.Sprintf("vouchers/%s.txt", b.Reference)
	url, err := s.Uploader.Upload(ctx, key, strings.NewReader(body), "text/plain; charset=utf-8")
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("voucher issued", "booking_id", b.ID, "reference", b.Reference, "url", url)
	}
	return &Voucher{BookingID: string(b.ID), Reference: b.Reference, URL: url}, nil
}

func renderVoucher(b *domainbooking.Booking, t *domaintour.Tour, usr *domainuser.User) string {
	var sb strings.Builder
	sb.WriteString("TOURWAY BOOKING VOUCHER\n")
	sb.WriteString("=======================\n\n")
	fmt.Fprintf(&sb, "Reference:    %s\n", b.Reference)
	fmt.Fprintf(&sb, "Status:       %s\n", b.Status)
	fmt.Fprintf(&sb, "Lead booker:  %s <%s>\n\n", usr.Name, usr.Email)
	fmt.Fprintf(&sb, "Tour:         %s\n", t.Title)
	fmt.Fprintf(&sb, "Destination:  %s, %s\n", t.Destination, t.Country)
	fmt.Fprintf(&sb, "Travel dates: %s to %s\n\n", b.Dates.Start.Format("2006-01-02"), b.Dates.End.Format("2006-01-02"))
	sb.WriteString("Travelers:\n")
	for i, tr := range b.Travelers {
		fmt.Fprintf(&sb, "  %d. %s (%d, %s)\n", i+1, tr.Name, tr.Age, tr.Gender)
	}
	fmt.Fprintf(&sb, "\nTotal paid:   %s\n", b.Price.TotalAmount.String())
	if b.SpecialRequests != "" {
		fmt.Fprintf(&sb, "Requests:     %s\n", b.SpecialRequests)
	}
	sb.WriteString("\nPresent this voucher together with a photo ID at departure.\n")
	return sb.String()
}
