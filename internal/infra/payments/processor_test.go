package payments_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/app/policies"
	"tourway/internal/domain/shared/money"
	"tourway/internal/infra/payments"
)

func chargeRequest(method policies.Method, amount int64) policies.ChargeRequest {
	return policies.ChargeRequest{
		Method: method,
		Amount: money.Must(amount, "USD"),
		Metadata: policies.ChargeMetadata{
			BookingID: "bk-1",
			UserID:    "user-1",
			TourID:    "tour-1",
		},
	}
}

func TestChargeApproved(t *testing.T) {
	p := &payments.Processor{}
	ctx := context.Background()

	result, err := p.Charge(ctx, chargeRequest(policies.MethodCreditCard, 57500))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.TransactionID, "txn_"))
	assert.Empty(t, result.PaymentIntentID)

	result, err = p.Charge(ctx, chargeRequest(policies.MethodStripe, 57500))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PaymentIntentID, "pi_"))

	result, err = p.Charge(ctx, chargeRequest(policies.MethodRazorpay, 57500))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PaymentIntentID, "pay_"))
}

func TestChargeDeclinedByDecider(t *testing.T) {
	p := &payments.Processor{
		Decide: func(req policies.ChargeRequest) error {
			return errors.New("insufficient funds")
		},
	}

	_, err := p.Charge(context.Background(), chargeRequest(policies.MethodCreditCard, 57500))
	require.ErrorIs(t, err, policies.ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestChargeNonPositiveAmount(t *testing.T) {
	p := &payments.Processor{}
	_, err := p.Charge(context.Background(), chargeRequest(policies.MethodCreditCard, 0))
	assert.ErrorIs(t, err, policies.ErrPaymentDeclined)
}

func TestChargeUnsupportedMethod(t *testing.T) {
	p := &payments.Processor{}
	_, err := p.Charge(context.Background(), chargeRequest(policies.Method("bitcoin"), 57500))
	assert.ErrorIs(t, err, policies.ErrUnsupportedMethod)
}

func TestChargeCancelledContext(t *testing.T) {
	p := &payments.Processor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Charge(ctx, chargeRequest(policies.MethodCreditCard, 57500))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeeEstimate(t *testing.T) {
	p := &payments.Processor{}
	amount := money.Must(57500, "USD")

	// 2.9% of 57500 is 1667, plus the 30 minor unit flat fee.
	card := p.FeeEstimate(policies.MethodCreditCard, amount)
	assert.Equal(t, int64(1697), card.Amount)
	assert.Equal(t, "USD", card.Currency)

	assert.Equal(t, int64(1697), p.FeeEstimate(policies.MethodDebitCard, amount).Amount)
	assert.Equal(t, int64(1697), p.FeeEstimate(policies.MethodStripe, amount).Amount)
	assert.Equal(t, int64(1150), p.FeeEstimate(policies.MethodRazorpay, amount).Amount)
	assert.Equal(t, int64(0), p.FeeEstimate(policies.MethodPayPal, amount).Amount)
}
