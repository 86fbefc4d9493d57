package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBody caps how much of a response is read.
const maxResponseBody = 1 << 20

// Request describes one JSON exchange with a platform API.
type Request struct {
	Platform Name
	Phase    string // e.g. "creating container"; used in error messages
	Method   string
	URL      string
	Query    url.Values
	Header   http.Header
	Body     any // JSON-encoded when non-nil
}

// Exchange performs req and decodes a 2xx JSON response into out.
//
// Transport failures wrap ErrNetwork, non-2xx responses are returned as
// *APIError carrying the body, and a body that does not decode into out
// wraps ErrParse.
func Exchange(ctx context.Context, client *http.Client, req Request, out any) error {
	target, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("%s: invalid url %q: %w", req.Platform, req.URL, err)
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", req.Platform, err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", req.Platform, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// Threads passes its access token in the query.
			urlErr.URL, _, _ = strings.Cut(urlErr.URL, "?")
		}
		return fmt.Errorf("%s %s: %w: %w", req.Platform, describe(req.Phase), ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w: %w", req.Platform, describe(req.Phase), ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(data)
		if text == "" {
			text = "Unknown error"
		}
		return &APIError{
			Platform: req.Platform,
			Phase:    req.Phase,
			Status:   resp.StatusCode,
			Body:     text,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.Platform, describe(req.Phase), ErrParse, err)
	}
	return nil
}

func describe(phase string) string {
	if phase == "" {
		return "request"
	}
	return phase
}
