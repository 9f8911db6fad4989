package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"tourway/internal/app/policies"
	"tourway/internal/domain/shared/money"
)

// Decider lets tests and sandbox runs inject charge outcomes. A nil decider
// approves everything.
type Decider func(req policies.ChargeRequest) error

// Processor routes charges to a per-method gateway simulation and computes
// the processing fee shown on receipts.
type Processor struct {
	Decide Decider
	Logger *slog.Logger
}

func (p *Processor) Charge(ctx context.Context, req policies.ChargeRequest) (policies.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return policies.ChargeResult{}, err
	}
	if req.Amount.Amount <= 0 {
		return policies.ChargeResult{}, fmt.Errorf("%w: non-positive amount", policies.ErrPaymentDeclined)
	}
	if p.Decide != nil {
		if err := p.Decide(req); err != nil {
			return policies.ChargeResult{}, fmt.Errorf("%w: %s", policies.ErrPaymentDeclined, err)
		}
	}
	result := policies.ChargeResult{TransactionID: reference("txn")}
	switch req.Method {
	case policies.MethodStripe:
		result.PaymentIntentID = reference("pi")
	case policies.MethodRazorpay:
		result.PaymentIntentID = reference("pay")
	case policies.MethodCreditCard, policies.MethodDebitCard, policies.MethodPayPal:
	default:
		return policies.ChargeResult{}, fmt.Errorf("%w: %q", policies.ErrUnsupportedMethod, req.Method)
	}
	if p.Logger != nil {
		p.Logger.Info("charge approved",
			"method", req.Method,
			"amount", req.Amount.Amount,
			"currency", req.Amount.Currency,
			"booking_id", req.Metadata.BookingID,
			"transaction_id", result.TransactionID)
	}
	return result, nil
}

// FeeEstimate mirrors what the gateways bill us: 2.9% plus a fixed 30 minor
// units for card rails and Stripe, 2% for Razorpay, nothing for the rest.
func (p *Processor) FeeEstimate(method policies.Method, amount money.Money) money.Money {
	switch method {
	case policies.MethodCreditCard, policies.MethodDebitCard, policies.MethodStripe:
		return money.Money{Amount: amount.Amount*29/1000 + 30, Currency: amount.Currency}
	case policies.MethodRazorpay:
		return amount.PercentOf(2)
	default:
		return money.Money{Amount: 0, Currency: amount.Currency}
	}
}

func reference(prefix string) string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return prefix + "_unavailable"
	}
	return prefix + "_" + hex.EncodeToString(buf)
}

var _ policies.PaymentsPort = (*Processor)(nil)
