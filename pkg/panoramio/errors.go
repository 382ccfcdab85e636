package panoramio

import (
	"errors"
	"fmt"
)

// ErrDecode is returned when a 200 response body is not the expected JSON
var ErrDecode = errors.New("panoramio: failed to decode response")

// StatusError reports a response with a status other than 200
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("panoramio: server returned non-OK status %s for %s", e.Status, e.URL)
}

// TransportError reports a request that never produced a response
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("panoramio: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// isSilent reports whether err is one of the failures Search reports as "no photos"
func isSilent(err error) bool {
	var statusErr *StatusError
	var transportErr *TransportError
	return errors.As(err, &statusErr) || errors.As(err, &transportErr)
}
