// Package threads posts to Threads through the Graph API container flow:
// create a TEXT container, publish it, then look up the permalink.
package threads

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/platform"
)

const (
	DefaultAPIBase = "https://graph.threads.net/v1.0"

	// webBase is where posts without a returned permalink are linked.
	webBase = "https://www.threads.com/t/"

	openAppNote = "(Note: Open Threads app to view)"
)

// Client is the Threads adapter.
type Client struct {
	apiBase string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase points the client at a different Graph API base, version
// segment included.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Threads adapter.
func New(opts ...Option) *Client {
	c := &Client{
		apiBase: DefaultAPIBase,
		http:    platform.NewHTTPClient(0),
		logger:  slog.With("component", "threads"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() platform.Name { return platform.Threads }

type idResponse struct {
	ID string `json:"id"`
}

type permalinkResponse struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
}

// Post creates and publishes a text post. Once publishing succeeds the post
// exists, so a failed permalink lookup still returns success with a
// placeholder that carries the post id.
func (c *Client) Post(ctx context.Context, message string, creds credentials.Bundle) (string, error) {
	tc := creds.Threads()
	userPath := c.apiBase + "/" + url.PathEscape(tc.UserID)

	var container idResponse
	err := platform.Exchange(ctx, c.http, platform.Request{
		Platform: platform.Threads,
		Phase:    "creating container",
		Method:   http.MethodPost,
		URL:      userPath + "/threads",
		Query: url.Values{
			"media_type":   {"TEXT"},
			"text":         {message},
			"access_token": {tc.AccessToken},
		},
	}, &container)
	if err != nil {
		return "", err
	}
	if container.ID == "" {
		return "", fmt.Errorf("%w: Threads container response has no id", platform.ErrParse)
	}

	var published idResponse
	err = platform.Exchange(ctx, c.http, platform.Request{
		Platform: platform.Threads,
		Phase:    "publishing",
		Method:   http.MethodPost,
		URL:      userPath + "/threads_publish",
		Query: url.Values{
			"creation_id":  {container.ID},
			"access_token": {tc.AccessToken},
		},
	}, &published)
	if err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", fmt.Errorf("%w: Threads publish response has no id", platform.ErrParse)
	}

	return c.permalink(ctx, published.ID, tc.AccessToken), nil
}

func (c *Client) permalink(ctx context.Context, postID, token string) string {
	var out permalinkResponse
	err := platform.Exchange(ctx, c.http, platform.Request{
		Platform: platform.Threads,
		Phase:    "fetching permalink",
		URL:      c.apiBase + "/" + url.PathEscape(postID),
		Query: url.Values{
			"fields":       {"permalink"},
			"access_token": {token},
		},
	}, &out)
	if err == nil && out.ID == "" {
		err = fmt.Errorf("%w: Threads permalink response has no id", platform.ErrParse)
	}
	if err != nil {
		c.logger.Warn("permalink lookup failed", "post_id", postID, "kind", platform.Kind(err), "error", err)
		return fmt.Sprintf("Post ID: %s %s", postID, openAppNote)
	}
	if out.Permalink == "" {
		return fmt.Sprintf("%s%s %s", webBase, postID, openAppNote)
	}
	return out.Permalink
}

var _ platform.Poster = (*Client)(nil)
