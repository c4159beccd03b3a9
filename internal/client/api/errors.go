package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the request never produced a response.
	ErrNetwork = errors.New("network request failed")

	// ErrUnavailable means the health probe failed; the server is treated
	// as unreachable until the next successful probe.
	ErrUnavailable = errors.New("server unavailable")
)

// HTTPError is returned for responses with a non-2xx status code.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// APIError is returned when the HTTP status was fine but the response
// envelope carried a non-success application code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
