package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the registry has no such project (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrUpstreamDown is returned on HTTP 5xx or when the circuit breaker for
	// the registry host is open.
	ErrUpstreamDown = errors.New("upstream registry unavailable")
)

// HTTPError represents an unexpected HTTP status that is none of the above.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// NotFoundError wraps ErrNotFound with the package identity.
type NotFoundError struct {
	Name string
	PURL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %s not found (%s)", e.Name, e.PURL)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
