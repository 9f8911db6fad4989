package policies

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedMethod = errors.New("payments: unsupported payment method")

// Method is the tagged set of payment methods the platform accepts.
// Unrecognized methods fail validation instead of falling back to a default
// gateway.
type Method string

const (
	MethodCreditCard Method = "credit_card"
	MethodDebitCard  Method = "debit_card"
	MethodStripe     Method = "stripe"
	MethodRazorpay   Method = "razorpay"
	MethodPayPal     Method = "paypal"
)

// ParseMethod validates a client-supplied payment method string.
func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodStripe, MethodRazorpay, MethodPayPal:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, raw)
	}
}
