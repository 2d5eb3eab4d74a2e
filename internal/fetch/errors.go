package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetworkError indicates the host could not be reached.
var ErrNetworkError = errors.New("network error")

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to download %s (status code %d)", e.URL, e.StatusCode)
}

// IsNotFound returns true if the server answered 404 or 410.
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone
	}
	return false
}

// IsForbidden returns true if the server refused the request.
func IsForbidden(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the server asked us to slow down.
func IsRateLimited(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests
	}
	return false
}
