//go:build !darwin

package keychain

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSystemStoreUsesKeyring(t *testing.T) {
	keyring.MockInit()
	s := NewSystemStore("com.social-hub.test")

	if err := s.Set("bluesky_identifier", "alice.bsky.social"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err := s.Get("bluesky_identifier")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "alice.bsky.social" {
		t.Errorf("expected alice.bsky.social, got %q", val)
	}

	// Stored under the configured service only.
	if _, err := keyring.Get("other.service", "bluesky_identifier"); err == nil {
		t.Error("expected secret to be scoped to its service")
	}
}

func TestSystemStoreMissingIsNotFound(t *testing.T) {
	keyring.MockInit()
	s := NewSystemStore("com.social-hub.test")

	_, err := s.Get("threads_user_id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSystemStoreDeleteMissingIsNoop(t *testing.T) {
	keyring.MockInit()
	s := NewSystemStore("com.social-hub.test")

	if err := s.Delete("never-set"); err != nil {
		t.Errorf("Delete nonexistent: %v", err)
	}
}

func TestSystemStoreSurfacesBackendErrors(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus unavailable"))
	t.Cleanup(keyring.MockInit)
	s := NewSystemStore("com.social-hub.test")

	_, err := s.Get("x_consumer_key")
	if err == nil {
		t.Fatal("expected backend error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("backend failure must not be reported as not found")
	}
}
