// Package credentials holds the per-platform secrets socialhub posts with and
// persists them as individual entries in a keychain.Store.
package credentials

// ServiceName is the keychain service every socialhub secret is stored under.
const ServiceName = "com.social-hub.credentials"

// Secret keys, one keychain account per field.
const (
	KeyBlueskyIdentifier  = "bluesky_identifier"
	KeyBlueskyAppPassword = "bluesky_app_password"
	KeyXConsumerKey       = "x_consumer_key"
	KeyXConsumerSecret    = "x_consumer_secret"
	KeyXAccessToken       = "x_access_token"
	KeyXAccessTokenSecret = "x_access_token_secret"
	KeyThreadsUserID      = "threads_user_id"
	KeyThreadsAccessToken = "threads_access_token"
)

// Keys lists every secret a Bundle is made of, in storage order.
var Keys = []string{
	KeyBlueskyIdentifier,
	KeyBlueskyAppPassword,
	KeyXConsumerKey,
	KeyXConsumerSecret,
	KeyXAccessToken,
	KeyXAccessTokenSecret,
	KeyThreadsUserID,
	KeyThreadsAccessToken,
}

// primaryKeys are the identifiers whose presence means a platform has been
// configured.
var primaryKeys = []string{
	KeyBlueskyIdentifier,
	KeyXConsumerKey,
	KeyThreadsUserID,
}

// Bundle is the full set of platform secrets. It is passed by value; a loaded
// Bundle always has every field set, though any field may be empty.
type Bundle struct {
	BlueskyIdentifier  string `json:"bluesky_identifier"`
	BlueskyAppPassword string `json:"bluesky_app_password"`
	XConsumerKey       string `json:"x_consumer_key"`
	XConsumerSecret    string `json:"x_consumer_secret"`
	XAccessToken       string `json:"x_access_token"`
	XAccessTokenSecret string `json:"x_access_token_secret"`
	ThreadsUserID      string `json:"threads_user_id"`
	ThreadsAccessToken string `json:"threads_access_token"`
}

// BlueskyCredentials is the identifier and app password pair used to open a session.
type BlueskyCredentials struct {
	Identifier  string
	AppPassword string
}

// XCredentials are the four OAuth1 values for the X API.
type XCredentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// ThreadsCredentials are the Threads user id and its long-lived access token.
type ThreadsCredentials struct {
	UserID      string
	AccessToken string
}

func (b Bundle) Bluesky() BlueskyCredentials {
	return BlueskyCredentials{
		Identifier:  b.BlueskyIdentifier,
		AppPassword: b.BlueskyAppPassword,
	}
}

func (b Bundle) X() XCredentials {
	return XCredentials{
		ConsumerKey:       b.XConsumerKey,
		ConsumerSecret:    b.XConsumerSecret,
		AccessToken:       b.XAccessToken,
		AccessTokenSecret: b.XAccessTokenSecret,
	}
}

func (b Bundle) Threads() ThreadsCredentials {
	return ThreadsCredentials{
		UserID:      b.ThreadsUserID,
		AccessToken: b.ThreadsAccessToken,
	}
}

// Redacted returns a copy with every non-empty secret value masked, keeping
// the public identifiers readable.
func (b Bundle) Redacted() Bundle {
	return Bundle{
		BlueskyIdentifier:  b.BlueskyIdentifier,
		BlueskyAppPassword: mask(b.BlueskyAppPassword),
		XConsumerKey:       mask(b.XConsumerKey),
		XConsumerSecret:    mask(b.XConsumerSecret),
		XAccessToken:       mask(b.XAccessToken),
		XAccessTokenSecret: mask(b.XAccessTokenSecret),
		ThreadsUserID:      b.ThreadsUserID,
		ThreadsAccessToken: mask(b.ThreadsAccessToken),
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// values maps each secret key to its field value.
func (b Bundle) values() map[string]string {
	return map[string]string{
		KeyBlueskyIdentifier:  b.BlueskyIdentifier,
		KeyBlueskyAppPassword: b.BlueskyAppPassword,
		KeyXConsumerKey:       b.XConsumerKey,
		KeyXConsumerSecret:    b.XConsumerSecret,
		KeyXAccessToken:       b.XAccessToken,
		KeyXAccessTokenSecret: b.XAccessTokenSecret,
		KeyThreadsUserID:      b.ThreadsUserID,
		KeyThreadsAccessToken: b.ThreadsAccessToken,
	}
}

func bundleFrom(values map[string]string) Bundle {
	return Bundle{
		BlueskyIdentifier:  values[KeyBlueskyIdentifier],
		BlueskyAppPassword: values[KeyBlueskyAppPassword],
		XConsumerKey:       values[KeyXConsumerKey],
		XConsumerSecret:    values[KeyXConsumerSecret],
		XAccessToken:       values[KeyXAccessToken],
		XAccessTokenSecret: values[KeyXAccessTokenSecret],
		ThreadsUserID:      values[KeyThreadsUserID],
		ThreadsAccessToken: values[KeyThreadsAccessToken],
	}
}
