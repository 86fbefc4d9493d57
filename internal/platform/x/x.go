// Package x posts to X through the v2 tweets endpoint, signing each request
// with OAuth 1.0a user context.
package x

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/platform"
)

const (
	DefaultAPIBase = "https://api.twitter.com"
	DefaultWebBase = "https://x.com"

	tweetsPath = "/2/tweets"
)

// Client is the X adapter.
type Client struct {
	apiBase string
	webBase string
	http    *http.Client
	noncer  oauth1.Noncer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase points the client at a different API host.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithWebBase changes the host used for the returned post URL.
func WithWebBase(base string) Option {
	return func(c *Client) { c.webBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient sets the client whose transport and timeout carry the
// signed requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNoncer fixes the OAuth nonce source.
func WithNoncer(n oauth1.Noncer) Option {
	return func(c *Client) { c.noncer = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates an X adapter.
func New(opts ...Option) *Client {
	c := &Client{
		apiBase: DefaultAPIBase,
		webBase: DefaultWebBase,
		http:    platform.NewHTTPClient(0),
		logger:  slog.With("component", "x"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() platform.Name { return platform.X }

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Post publishes message as a tweet and returns its x.com URL.
func (c *Client) Post(ctx context.Context, message string, creds credentials.Bundle) (string, error) {
	signed := c.signedClient(ctx, creds.X())

	var out tweetResponse
	err := platform.Exchange(ctx, signed, platform.Request{
		Platform: platform.X,
		Method:   http.MethodPost,
		URL:      c.apiBase + tweetsPath,
		Body:     map[string]string{"text": message},
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("%w: X response has no data.id", platform.ErrParse)
	}
	c.logger.Debug("tweet created", "id", out.Data.ID)
	return fmt.Sprintf("%s/i/web/status/%s", c.webBase, out.Data.ID), nil
}

// signedClient wraps the configured transport in an OAuth1 signer. The JSON
// body is not form encoded, so only the oauth_* parameters are signed.
func (c *Client) signedClient(ctx context.Context, creds credentials.XCredentials) *http.Client {
	cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	cfg.Noncer = c.noncer
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	hc := cfg.Client(context.WithValue(ctx, oauth1.HTTPClient, c.http), token)
	hc.Timeout = c.http.Timeout
	return hc
}

var _ platform.Poster = (*Client)(nil)
