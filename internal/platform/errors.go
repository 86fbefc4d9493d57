package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication means the platform rejected the identity or secret.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNetwork wraps transport failures: DNS, connect, timeout, reset.
	ErrNetwork = errors.New("network error")
	// ErrParse means a response did not have the expected shape.
	ErrParse = errors.New("unexpected response")
)

// APIError is a non-success HTTP response from a platform API.
type APIError struct {
	Platform Name
	Phase    string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("%s API returned error %d when %s: %s", e.Platform, e.Status, e.Phase, e.Body)
	}
	return fmt.Sprintf("%s API returned error %d: %s", e.Platform, e.Status, e.Body)
}

// StatusOf returns the HTTP status of an APIError anywhere in err's chain,
// or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Kind names the class of an adapter error for logs and metrics.
func Kind(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuthentication):
		return "auth"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "other"
	}
}
