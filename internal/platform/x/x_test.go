package x

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/dghubble/oauth1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/platform"
)

var testCreds = credentials.Bundle{
	XConsumerKey:       "consumer-key",
	XConsumerSecret:    "consumer-secret",
	XAccessToken:       "access-token",
	XAccessTokenSecret: "access-secret",
}

type fixedNoncer string

func (n fixedNoncer) Nonce() string { return string(n) }

func parseAuthHeader(t *testing.T, header string) map[string]string {
	t.Helper()
	rest, ok := strings.CutPrefix(header, "OAuth ")
	require.True(t, ok, "authorization header %q", header)

	params := map[string]string{}
	for _, pair := range strings.Split(rest, ", ") {
		k, v, ok := strings.Cut(pair, "=")
		require.True(t, ok, "pair %q", pair)
		v, err := url.PathUnescape(strings.Trim(v, `"`))
		require.NoError(t, err)
		params[k] = v
	}
	return params
}

// expectedSignature recomputes the HMAC-SHA1 signature over the RFC 5849
// base string for a request without query or form parameters.
func expectedSignature(method, baseURL string, oauthParams map[string]string, consumerSecret, tokenSecret string) string {
	var pairs []string
	for k, v := range oauthParams {
		if k == "oauth_signature" {
			continue
		}
		pairs = append(pairs, oauth1.PercentEncode(k)+"="+oauth1.PercentEncode(v))
	}
	sort.Strings(pairs)

	base := method + "&" + oauth1.PercentEncode(baseURL) + "&" + oauth1.PercentEncode(strings.Join(pairs, "&"))
	mac := hmac.New(sha1.New, []byte(oauth1.PercentEncode(consumerSecret)+"&"+oauth1.PercentEncode(tokenSecret)))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestPostSignsAndReturnsStatusURL(t *testing.T) {
	var gotText string
	var gotAuth map[string]string
	var baseURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, tweetsPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotText = body["text"]
		gotAuth = parseAuthHeader(t, r.Header.Get("Authorization"))
		baseURL = "http://" + r.Host + r.URL.Path

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"1790000000000000000","text":"hello x"}}`)
	}))
	defer srv.Close()

	c := New(WithAPIBase(srv.URL), WithHTTPClient(srv.Client()), WithNoncer(fixedNoncer("n0nce")))
	got, err := c.Post(context.Background(), "hello x", testCreds)
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/i/web/status/1790000000000000000", got)
	assert.Equal(t, "hello x", gotText)

	assert.Equal(t, "consumer-key", gotAuth["oauth_consumer_key"])
	assert.Equal(t, "access-token", gotAuth["oauth_token"])
	assert.Equal(t, "HMAC-SHA1", gotAuth["oauth_signature_method"])
	assert.Equal(t, "1.0", gotAuth["oauth_version"])
	assert.Equal(t, "n0nce", gotAuth["oauth_nonce"])
	assert.NotEmpty(t, gotAuth["oauth_timestamp"])

	want := expectedSignature(http.MethodPost, baseURL, gotAuth, "consumer-secret", "access-secret")
	assert.Equal(t, want, gotAuth["oauth_signature"])
}

func TestPostNon2xxEmbedsBody(t *testing.T) {
	const body = `{"title":"Forbidden","detail":"You are not allowed to create a Tweet with duplicate content.","status":403}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := New(WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Post(context.Background(), "dup", testCreds)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, platform.StatusOf(err))
	assert.Equal(t, "X API returned error 403: "+body, err.Error())
}

func TestPostMissingIDIsParseError(t *testing.T) {
	for name, resp := range map[string]string{
		"no data":  `{"errors":[]}`,
		"empty id": `{"data":{"id":""}}`,
		"not json": `<html>ok</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, resp)
			}))
			defer srv.Close()

			c := New(WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))
			_, err := c.Post(context.Background(), "hi", testCreds)
			assert.ErrorIs(t, err, platform.ErrParse)
		})
	}
}

func TestPostWebBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"7"}}`)
	}))
	defer srv.Close()

	c := New(WithAPIBase(srv.URL+"/"), WithWebBase("https://twitter.com/"), WithHTTPClient(srv.Client()))
	got, err := c.Post(context.Background(), "hi", testCreds)
	require.NoError(t, err)
	assert.Equal(t, "https://twitter.com/i/web/status/7", got)
}

func TestPostUnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(WithAPIBase(base))
	_, err := c.Post(context.Background(), "hi", testCreds)
	assert.ErrorIs(t, err, platform.ErrNetwork)
}
