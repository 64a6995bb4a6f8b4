package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for transport operations.
var (
	// ErrUnavailable indicates that the circuit breaker for a service is open
	// or rejecting requests while half-open.
	ErrUnavailable = errors.New("service unavailable")

	// ErrInvalidBaseURL indicates that a client was configured with an unusable URL.
	ErrInvalidBaseURL = errors.New("invalid base url")
)

// requestError is implemented by every error that originates in the request
// layer: connection failures, non-2xx responses and undecodable bodies.
type requestError interface {
	error
	requestError()
}

// IsRequestError reports whether err was raised by the request layer
// (network failure, HTTP error status or malformed response body).
// Callers that degrade on remote failures use this to tell them apart from
// programming and validation errors.
func IsRequestError(err error) bool {
	var re requestError
	return errors.As(err, &re)
}

// NetworkError wraps a failure to complete a round trip.
type NetworkError struct {
	Service string
	Method  string
	Path    string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Service, e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (*NetworkError) requestError() {}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Service    string
	Method     string
	Path       string
	StatusCode int

	// Body holds at most the first few KiB of the response body.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s %s: status %d", e.Service, e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: status %d: %s", e.Service, e.Method, e.Path, e.StatusCode, e.Body)
}

func (*StatusError) requestError() {}

// NotFound reports whether the response was a 404.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Unauthorized reports whether the response was a 401.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Temporary reports whether the status is a server-side failure.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// DecodeError is returned when a 2xx body cannot be decoded.
type DecodeError struct {
	Service string
	Path    string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", e.Service, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (*DecodeError) requestError() {}

// AsStatus extracts a StatusError from err.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
