// Package platform defines the contract every social platform adapter
// implements and the plumbing they share: names, error classification and
// JSON-over-HTTP exchanges.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benaskins/socialhub/internal/credentials"
)

// Name identifies a platform in results.
type Name string

const (
	Bluesky Name = "Bluesky"
	X       Name = "X"
	Threads Name = "Threads"

	// All tags the synthetic result returned when a post-to-all request
	// cannot start.
	All Name = "All"
)

// Order is the fixed order of results from a post-to-all request.
var Order = []Name{Bluesky, X, Threads}

// Slug returns the lowercase form used in API paths and CLI flags.
func (n Name) Slug() string {
	return strings.ToLower(string(n))
}

// ParseName resolves a slug or display name to a platform.
func ParseName(s string) (Name, error) {
	for _, n := range Order {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	switch strings.ToLower(s) {
	case "twitter":
		return X, nil
	case "bsky":
		return Bluesky, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Poster publishes a message to one platform and returns a URL for the
// created post. Implementations pick their own secrets out of the bundle,
// make a single attempt and never retry.
type Poster interface {
	Name() Name
	Post(ctx context.Context, message string, creds credentials.Bundle) (string, error)
}

// NewHTTPClient returns the client adapters use. A zero timeout leaves
// requests bounded only by the transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
