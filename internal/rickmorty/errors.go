package rickmorty

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidID is returned for non-positive character ids.
	ErrInvalidID = errors.New("character id must be positive")

	// ErrDecode wraps failures to parse an upstream response body.
	ErrDecode = errors.New("decode response")
)

// StatusError is returned when the upstream API answers with a non-2xx status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// NotFound reports whether the upstream had no such resource.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// IsNotFound reports whether err carries an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.NotFound()
}
