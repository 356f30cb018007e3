package service

import (
	"errors"

	"paypal-gateway/paypal"
)

// Error kinds. Every error returned by PaymentService matches exactly one of the
// first five with errors.Is, and additionally ErrProviderTimeout when PayPal did
// not answer in time.
var (
	ErrAuthentication       = errors.New("paypal authentication failed")
	ErrOrderCreation        = errors.New("paypal order creation failed")
	ErrCapture              = errors.New("paypal capture failed")
	ErrPlanCreation         = errors.New("paypal plan creation failed")
	ErrSubscriptionCreation = errors.New("paypal subscription creation failed")

	ErrProviderTimeout = paypal.ErrTimeout
)

// Error carries the caller-facing detail for a failed operation.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// newError builds an Error of the given kind. When withBody is set and PayPal
// answered with an unexpected status, the raw response body is appended to detail.
func newError(kind error, detail string, withBody bool, err error) *Error {
	if errors.Is(err, paypal.ErrTimeout) {
		return &Error{Kind: kind, Detail: "PayPal request timed out", Err: err}
	}
	if apiErr, ok := paypal.IsAPIError(err); ok && withBody {
		detail += ": " + apiErr.Body
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}
