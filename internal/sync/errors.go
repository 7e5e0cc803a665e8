package sync

import (
	"errors"
	"fmt"
)

// Failure classification for responses from the assistant API. Handlers map
// these onto HTTP status codes; the orchestrator only logs and retries.
var (
	ErrMissingKey      = errors.New("API key is missing or invalid")
	ErrUnauthorized    = errors.New("Unauthorized: Invalid API key")
	ErrForbidden       = errors.New("Forbidden: You do not have permission to access this resource")
	ErrNotFound        = errors.New("Not Found: Check your API Key")
	ErrInvalidResponse = errors.New("Invalid JSON response from API")
)

// TransportError is a network-level failure (DNS, reset, timeout) before or
// during a call, carrying the underlying message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Connection error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is any non-2xx response not covered by the sentinels above.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return "API error: " + e.Status
}
