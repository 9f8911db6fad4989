package policies

import (
	"context"
	"errors"

	"tourway/internal/domain/shared/money"
)

// ErrPaymentDeclined wraps the gateway-supplied failure detail so callers
// can discriminate payment failures from infrastructure errors.
var ErrPaymentDeclined = errors.New("payments: charge declined")

// ChargeRequest carries everything the gateway needs to attempt a charge.
type ChargeRequest struct {
	Method   Method
	Amount   money.Money
	Metadata ChargeMetadata
}

// ChargeMetadata links the charge back to the booking for reconciliation.
type ChargeMetadata struct {
	BookingID string
	UserID    string
	TourID    string
}

// ChargeResult reports a successful charge.
type ChargeResult struct {
	TransactionID   string
	PaymentIntentID string
}

// PaymentsPort abstracts charge execution. A declined charge returns an
// error wrapping ErrPaymentDeclined; other errors are infrastructure faults.
type PaymentsPort interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)

	// FeeEstimate returns the gateway processing fee for the receipt.
	FeeEstimate(method Method, amount money.Money) money.Money
}

// RefundExecutor is the extension point for moving refund money back to the
// customer. The booking flow records refund amounts but does not execute
// them; finance settles refunds out of band through this hook.
type RefundExecutor interface {
	ExecuteRefund(ctx context.Context, bookingID string, amount money.Money, reason string) error
}

// NoopRefundExecutor records nothing and always succeeds.
type NoopRefundExecutor struct{}

func (NoopRefundExecutor) ExecuteRefund(ctx context.Context, bookingID string, amount money.Money, reason string) error {
	return nil
}
