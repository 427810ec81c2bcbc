package api

import (
	"errors"
	"fmt"
)

// OfflineReason is the message shown while the admin server cannot be reached
const OfflineReason = "The server is offline. Start it again to continue."

var (
	// ErrNetworkUnreachable matches every connection-level failure, including the
	// offline short-circuit
	ErrNetworkUnreachable = errors.New("server is offline")

	// ErrOffline is returned without touching the network while the session is offline
	ErrOffline = &NetworkError{Reason: OfflineReason, Offline: true}

	// ErrUnauthorized matches a 401 on an authenticated request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation matches local input validation failures
	ErrValidation = errors.New("validation failed")

	// ErrDecode matches a 2xx response whose body did not fit the expected shape
	ErrDecode = errors.New("failed to decode response")
)

// NetworkError reports that the request never produced an HTTP response
type NetworkError struct {
	Reason  string
	Offline bool // true when the request was short-circuited by the offline flag
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server is offline: %v", e.Err)
	}
	return "server is offline"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports offline short-circuits as ErrOffline and all network errors as
// ErrNetworkUnreachable
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetworkUnreachable {
		return true
	}
	if target == ErrOffline {
		return e.Offline
	}
	return false
}

// UnauthorizedError is an HTTP 401 on a request that required the bearer token
type UnauthorizedError struct {
	Detail string
}

func (e *UnauthorizedError) Error() string {
	return httpMessage(401, e.Detail)
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// RequestError is any other non-2xx response. Detail is the best-effort decoded body.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return httpMessage(e.Status, e.Detail)
}

// ValidationError is raised before any network call for blank or malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	var authErr *UnauthorizedError
	if errors.As(err, &authErr) {
		return 401
	}
	return 0
}

func httpMessage(status int, detail string) string {
	if detail == "" {
		return fmt.Sprintf("HTTP %d", status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, detail)
}
