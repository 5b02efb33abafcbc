package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches a ServerError with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// ServerError is returned when the server answered with a non-2xx status.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrUnauthorized) true for 401 responses.
func (e *ServerError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// NetworkError is returned when a request was sent but no response arrived,
// including timeouts and cancellation.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestSetupError is returned when a request could not be built or sent.
type RequestSetupError struct {
	Message string
	Err     error
}

func (e *RequestSetupError) Error() string {
	return "request error: " + e.Message
}

func (e *RequestSetupError) Unwrap() error { return e.Err }
