// Package bluesky posts to Bluesky over AT Protocol XRPC.
//
// A post is three steps: open a session with the identifier and app
// password, create an app.bsky.feed.post record in the account's repo, and
// turn the returned at:// URI into a bsky.app link.
package bluesky

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/platform"
)

const (
	DefaultHost    = "https://bsky.social"
	DefaultWebHost = "https://bsky.app"

	// PostCollection is the lexicon collection posts are created in.
	PostCollection = "app.bsky.feed.post"

	createSessionPath = "/xrpc/com.atproto.server.createSession"
	createRecordPath  = "/xrpc/com.atproto.repo.createRecord"
)

// Client is the Bluesky adapter.
type Client struct {
	host    string
	webHost string
	http    *http.Client
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHost points the client at a different PDS / entryway.
func WithHost(host string) Option {
	return func(c *Client) { c.host = strings.TrimRight(host, "/") }
}

// WithWebHost changes the host used for the returned post URL.
func WithWebHost(host string) Option {
	return func(c *Client) { c.webHost = strings.TrimRight(host, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock sets the clock used for record creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Bluesky adapter.
func New(opts ...Option) *Client {
	c := &Client{
		host:    DefaultHost,
		webHost: DefaultWebHost,
		http:    platform.NewHTTPClient(0),
		now:     time.Now,
		logger:  slog.With("component", "bluesky"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() platform.Name { return platform.Bluesky }

// session is the authenticated identity for a single Post call.
type session struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
	Handle    string `json:"handle"`
}

type postRecord struct {
	Type      string `json:"$type"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type createRecordInput struct {
	Repo       string     `json:"repo"`
	Collection string     `json:"collection"`
	Record     postRecord `json:"record"`
}

type createRecordOutput struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Post publishes message and returns the bsky.app URL of the new post.
func (c *Client) Post(ctx context.Context, message string, creds credentials.Bundle) (string, error) {
	sess, err := c.login(ctx, creds.Bluesky())
	if err != nil {
		return "", err
	}
	c.logger.Debug("session created", "did", sess.Did, "handle", sess.Handle)

	var out createRecordOutput
	err = platform.Exchange(ctx, c.http, platform.Request{
		Platform: platform.Bluesky,
		Phase:    "creating post",
		Method:   http.MethodPost,
		URL:      c.host + createRecordPath,
		Header:   http.Header{"Authorization": {"Bearer " + sess.AccessJwt}},
		Body: createRecordInput{
			Repo:       sess.Did,
			Collection: PostCollection,
			Record: postRecord{
				Type:      PostCollection,
				Text:      message,
				CreatedAt: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
			},
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("failed to create post on Bluesky: %w", err)
	}

	rkey, err := RecordKey(out.URI)
	if err != nil {
		return "", err
	}

	profile := sess.Handle
	if profile == "" {
		profile = sess.Did
	}
	return fmt.Sprintf("%s/profile/%s/post/%s", c.webHost, profile, rkey), nil
}

func (c *Client) login(ctx context.Context, creds credentials.BlueskyCredentials) (session, error) {
	var sess session
	err := platform.Exchange(ctx, c.http, platform.Request{
		Platform: platform.Bluesky,
		Phase:    "logging in",
		Method:   http.MethodPost,
		URL:      c.host + createSessionPath,
		Body: map[string]string{
			"identifier": creds.Identifier,
			"password":   creds.AppPassword,
		},
	}, &sess)
	if err != nil {
		if status := platform.StatusOf(err); status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return session{}, fmt.Errorf("failed to authenticate with Bluesky, please check your credentials: %w: %w", platform.ErrAuthentication, err)
		}
		return session{}, fmt.Errorf("failed to authenticate with Bluesky: %w", err)
	}
	if sess.AccessJwt == "" || sess.Did == "" {
		return session{}, fmt.Errorf("failed to authenticate with Bluesky: %w: session missing accessJwt or did", platform.ErrParse)
	}
	return sess, nil
}

// RecordKey extracts the record key from an at://<did>/<collection>/<rkey> URI.
func RecordKey(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return "", fmt.Errorf("%w: post uri %q is not an at:// uri", platform.ErrParse, uri)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || slices.Contains(parts, "") {
		return "", fmt.Errorf("%w: failed to extract rkey from post uri %q", platform.ErrParse, uri)
	}
	return parts[2], nil
}

var _ platform.Poster = (*Client)(nil)
