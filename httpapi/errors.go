package httpapi

import (
	"fmt"
	"net/http"

	portalAuth "github.com/MrEthical07/portalAuth"
)

// APIError describes a failed backend call. Status is 0 for transport and decode
// failures.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

var _ portalAuth.UserMessager = (*APIError)(nil)

// UserMessage returns the backend text without the status suffix.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Unwrap exposes the portalAuth sentinel so errors.Is works on results.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// kindForStatus maps an HTTP status to a portalAuth sentinel. badRequest is the
// endpoint-specific meaning of a 400.
func kindForStatus(status int, badRequest error) error {
	switch {
	case status == http.StatusBadRequest && badRequest != nil:
		return badRequest
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return portalAuth.ErrUnauthorized
	case status == http.StatusNotFound:
		return portalAuth.ErrNotFound
	case status == http.StatusConflict:
		return portalAuth.ErrAccountExists
	case status >= 500:
		return portalAuth.ErrServer
	default:
		return portalAuth.ErrDecode
	}
}
