package coolify

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("coolify: not found")
	ErrNoResources = errors.New("coolify: project has no resources")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coolify API error: %s %s: %d - %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
