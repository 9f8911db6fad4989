package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"tourway/internal/app/policies"
)

// SMTPNotifier sends booking lifecycle emails over plain SMTP. With no
// address configured it logs the message instead of sending, which keeps
// local runs working without a mail relay.
type SMTPNotifier struct {
	Addr     string
	From     string
	Username string
	Password string
	Logger   *slog.Logger

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (n *SMTPNotifier) SendBookingConfirmation(ctx context.Context, note policies.BookingNotification) error {
	subject := fmt.Sprintf("Booking confirmed: %s", note.Reference)
	body := confirmationBody(note)
	return n.deliver(ctx, note.UserEmail, subject, body)
}

func (n *SMTPNotifier) SendBookingCancellation(ctx context.Context, note policies.BookingNotification) error {
	subject := fmt.Sprintf("Booking cancelled: %s", note.Reference)
	body := cancellationBody(note)
	return n.deliver(ctx, note.UserEmail, subject, body)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("notify: recipient address missing")
	}
	if n.Addr == "" {
		if n.Logger != nil {
			n.Logger.Info("email suppressed, no smtp relay configured", "to", to, "subject", subject)
		}
		return nil
	}
	msg := buildMessage(n.From, to, subject, body)
	var auth smtp.Auth
	if n.Username != "" {
		host := n.Addr
		if idx := strings.IndexByte(host, ':'); idx > 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", n.Username, n.Password, host)
	}
	sendFn := n.send
	if sendFn == nil {
		sendFn = smtp.SendMail
	}
	return sendFn(n.Addr, auth, n.From, []string{to}, msg)
}

func confirmationBody(note policies.BookingNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", note.UserName)
	fmt.Fprintf(&b, "Your booking %s for %q is confirmed.\r\n", note.Reference, note.TourTitle)
	fmt.Fprintf(&b, "Destination: %s\r\n", note.Destination)
	fmt.Fprintf(&b, "Travel dates: %s to %s\r\n", note.TravelStart, note.TravelEnd)
	fmt.Fprintf(&b, "Travelers: %d\r\n", note.Travelers)
	fmt.Fprintf(&b, "Total paid: %s\r\n\r\n", note.TotalAmount)
	b.WriteString("We look forward to traveling with you.\r\n")
	return b.String()
}

func cancellationBody(note policies.BookingNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", note.UserName)
	fmt.Fprintf(&b, "Your booking %s for %q has been cancelled.\r\n", note.Reference, note.TourTitle)
	if note.CancelReason != "" {
		fmt.Fprintf(&b, "Reason: %s\r\n", note.CancelReason)
	}
	if note.RefundPercent > 0 {
		fmt.Fprintf(&b, "Refund: %s (%d%% of the amount paid)\r\n", note.RefundAmount, note.RefundPercent)
	} else {
		b.WriteString("This cancellation is outside the refund window, so no refund applies.\r\n")
	}
	b.WriteString("\r\nWe hope to see you on another tour.\r\n")
	return b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

var _ policies.Notifier = (*SMTPNotifier)(nil)
