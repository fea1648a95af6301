package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotSignedIn is returned by calls that need a session when none is held.
var ErrNotSignedIn = errors.New("not signed in")

// ErrSessionChanged is returned by RefreshSession when the user signed in or
// out while the refresh was in flight. The refreshed session is discarded.
var ErrSessionChanged = errors.New("session changed during refresh")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// isRejection reports whether the API refused the request itself, as opposed
// to the request never getting an answer.
func isRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
