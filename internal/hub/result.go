package hub

import (
	"errors"

	"github.com/benaskins/socialhub/internal/platform"
)

// ErrTaskAborted marks a platform task that panicked before producing an
// outcome.
var ErrTaskAborted = errors.New("task did not complete")

// Result is the outcome of posting to one platform. URL is set only on
// success, Error only on failure.
type Result struct {
	Platform platform.Name `json:"platform"`
	Success  bool          `json:"success"`
	URL      string        `json:"url,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Succeeded builds a successful Result.
func Succeeded(name platform.Name, url string) Result {
	return Result{Platform: name, Success: true, URL: url}
}

// Failed builds a failed Result from err's message.
func Failed(name platform.Name, err error) Result {
	return Result{Platform: name, Error: err.Error()}
}

// AnyFailed reports whether any result is a failure.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if !r.Success {
			return true
		}
	}
	return false
}
