package meli

import (
	"errors"
	"fmt"
)

// Sentinel errors for the API error taxonomy. Callers classify responses
// with errors.Is rather than inspecting status codes themselves.
var (
	// ErrUnauthorized maps HTTP 401 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden maps HTTP 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound maps HTTP 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited maps HTTP 429 responses from the upstream API.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrRateLimitExceeded is returned by the local rate limiter before a
	// request is even attempted. The gateway fails fast instead of blocking.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTimeout maps request timeouts. Distinct from HTTP errors so callers
	// can tell a slow upstream from a broken one.
	ErrTimeout = errors.New("request timeout")
)

// HTTPError is the generic classification for non-2xx statuses that have no
// dedicated sentinel. It wraps the status code and a truncated response body.
type HTTPError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d on %s: %s", e.Status, e.Endpoint, e.Body)
}

// classifyStatus turns a non-2xx status into a taxonomy error.
func classifyStatus(status int, endpoint, body string) error {
	switch status {
	case 401:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case 403:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case 404:
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case 429:
		return ErrRateLimited
	default:
		return &HTTPError{Status: status, Endpoint: endpoint, Body: body}
	}
}
