package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/benaskins/socialhub/internal/keychain"
)

func fullBundle() Bundle {
	return Bundle{
		BlueskyIdentifier:  "alice.bsky.social",
		BlueskyAppPassword: "app-pass-1234",
		XConsumerKey:       "ck",
		XConsumerSecret:    "cs",
		XAccessToken:       "at",
		XAccessTokenSecret: "ats",
		ThreadsUserID:      "1789",
		ThreadsAccessToken: "THQWJ-token",
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(keychain.NewMemoryStore())

	want := fullBundle()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSaveStoresEachKey(t *testing.T) {
	mem := keychain.NewMemoryStore()
	s := NewStore(mem)

	if err := s.Save(context.Background(), fullBundle()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if mem.Len() != len(Keys) {
		t.Fatalf("expected %d secrets, got %d", len(Keys), mem.Len())
	}
	v, _ := mem.Get(KeyXAccessTokenSecret)
	if v != "ats" {
		t.Errorf("expected ats, got %q", v)
	}
}

func TestLoadEmptyStoreIsMissing(t *testing.T) {
	s := NewStore(keychain.NewMemoryStore())

	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestLoadPartialStoreIsMissing(t *testing.T) {
	mem := keychain.NewMemoryStore()
	mem.Set(KeyBlueskyIdentifier, "alice.bsky.social")
	mem.Set(KeyBlueskyAppPassword, "pw")
	s := NewStore(mem)

	b, err := s.Load(context.Background())
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if b != (Bundle{}) {
		t.Errorf("expected zero bundle on failure, got %+v", b)
	}
}

func TestLoadEmptyValuesArePresent(t *testing.T) {
	ctx := context.Background()
	s := NewStore(keychain.NewMemoryStore())

	// Only X configured; the others are saved as empty strings.
	if err := s.Save(ctx, Bundle{XConsumerKey: "ck"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.XConsumerKey != "ck" || b.BlueskyIdentifier != "" {
		t.Errorf("unexpected bundle %+v", b)
	}
}

type brokenStore struct{ *keychain.MemoryStore }

func (brokenStore) GetMultiple(keys []string) (map[string]string, error) {
	return nil, errors.New("user interaction is not allowed")
}

func TestLoadBackendErrorIsOpaque(t *testing.T) {
	s := NewStore(brokenStore{keychain.NewMemoryStore()})

	_, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrMissing) {
		t.Error("backend failure must not be reported as missing credentials")
	}
}

func TestExistsWithOnlyXConsumerKey(t *testing.T) {
	mem := keychain.NewMemoryStore()
	mem.Set(KeyXConsumerKey, "ck")
	s := NewStore(mem)

	if !s.Exists(context.Background()) {
		t.Error("expected Exists to be true with only the X consumer key")
	}
}

func TestExistsFalseWhenEmpty(t *testing.T) {
	s := NewStore(keychain.NewMemoryStore())
	if s.Exists(context.Background()) {
		t.Error("expected Exists to be false for an empty store")
	}
}

func TestExistsIgnoresSecondaryKeys(t *testing.T) {
	mem := keychain.NewMemoryStore()
	mem.Set(KeyBlueskyAppPassword, "pw")
	mem.Set(KeyThreadsAccessToken, "tok")
	s := NewStore(mem)

	if s.Exists(context.Background()) {
		t.Error("expected Exists to consider only primary identifiers")
	}
}

func TestDeleteRemovesAll(t *testing.T) {
	ctx := context.Background()
	mem := keychain.NewMemoryStore()
	s := NewStore(mem)
	s.Save(ctx, fullBundle())

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mem.Len() != 0 {
		t.Errorf("expected empty store, got %d secrets", mem.Len())
	}
	if s.Exists(ctx) {
		t.Error("expected Exists false after delete")
	}
}

func TestSubsets(t *testing.T) {
	b := fullBundle()

	if got := b.Bluesky(); got.Identifier != "alice.bsky.social" || got.AppPassword != "app-pass-1234" {
		t.Errorf("unexpected bluesky subset %+v", got)
	}
	if got := b.X(); got.ConsumerKey != "ck" || got.AccessTokenSecret != "ats" {
		t.Errorf("unexpected x subset %+v", got)
	}
	if got := b.Threads(); got.UserID != "1789" || got.AccessToken != "THQWJ-token" {
		t.Errorf("unexpected threads subset %+v", got)
	}
}

func TestRedacted(t *testing.T) {
	r := fullBundle().Redacted()

	if r.BlueskyIdentifier != "alice.bsky.social" {
		t.Errorf("identifier should stay readable, got %q", r.BlueskyIdentifier)
	}
	if r.BlueskyAppPassword != "****1234" {
		t.Errorf("expected ****1234, got %q", r.BlueskyAppPassword)
	}
	if r.XConsumerKey != "****" {
		t.Errorf("expected short secret fully masked, got %q", r.XConsumerKey)
	}
	if (Bundle{}).Redacted() != (Bundle{}) {
		t.Error("empty values should stay empty")
	}
}

func TestBundleJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(fullBundle())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]string
	json.Unmarshal(data, &m)
	for _, key := range Keys {
		if _, ok := m[key]; !ok {
			t.Errorf("expected JSON field %q", key)
		}
	}
}
