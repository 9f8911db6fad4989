package pricing

import (
	"errors"

	"tourway/internal/domain/shared/money"
)

var (
	ErrNegativeBasePrice = errors.New("pricing: base price cannot be negative")
	ErrInvalidDiscount   = errors.New("pricing: discount percent must be between 0 and 100")
)

// Rates applied on top of the post-discount amount.
const (
	TaxPercent        = 10
	ServiceFeePercent = 5
)

// Snapshot is the frozen cost breakdown computed once at booking creation.
// It is never recomputed from the live tour price.
type Snapshot struct {
	BasePrice       money.Money `bson:"base_price" json:"basePrice"`
	DiscountPercent int64       `bson:"discount_percent" json:"discountPercent"`
	DiscountAmount  money.Money `bson:"discount_amount" json:"discountAmount"`
	TaxAmount       money.Money `bson:"tax_amount" json:"taxAmount"`
	FeeAmount       money.Money `bson:"fee_amount" json:"feeAmount"`
	TotalAmount     money.Money `bson:"total_amount" json:"totalAmount"`
}

// Quote computes the full price breakdown for a booking:
// discount off the base price, then tax and service fee on the discounted
// amount. Pure computation, no side effects.
func Quote(basePrice money.Money, discountPercent int64) (Snapshot, error) {
	if basePrice.Amount < 0 {
		return Snapshot{}, ErrNegativeBasePrice
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Snapshot{}, ErrInvalidDiscount
	}

	discount := basePrice.PercentOf(discountPercent)
	discounted, err := basePrice.Sub(discount)
	if err != nil {
		return Snapshot{}, err
	}
	tax := discounted.PercentOf(TaxPercent)
	fee := discounted.PercentOf(ServiceFeePercent)

	total := discounted
	if total, err = total.Add(tax); err != nil {
		return Snapshot{}, err
	}
	if total, err = total.Add(fee); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		BasePrice:       basePrice,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		TaxAmount:       tax,
		FeeAmount:       fee,
		TotalAmount:     total,
	}, nil
}

// Currency reports the snapshot currency.
func (s Snapshot) Currency() string {
	return s.TotalAmount.Currency
}
