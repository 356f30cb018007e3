package paypal

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout is returned when a PayPal call does not complete within the client
// timeout or the caller's deadline.
var ErrTimeout = errors.New("paypal request timed out")

// APIError is a PayPal response with an unexpected status code. Body holds the raw
// response so callers can surface PayPal's own diagnostics.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsAPIError reports whether err wraps an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
