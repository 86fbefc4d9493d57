package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/benaskins/socialhub/internal/keychain"
)

// ErrMissing is returned by Load when the secret store has no entry for one
// of the required keys.
var ErrMissing = errors.New("credentials not found")

// Store loads and saves Bundles as individual secrets.
type Store struct {
	secrets keychain.Store
}

// NewStore creates a credential store over the given secret store.
func NewStore(secrets keychain.Store) *Store {
	return &Store{secrets: secrets}
}

// Load reads every key. It fails as a whole if any key is absent; a bundle is
// never returned partially populated.
func (s *Store) Load(ctx context.Context) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	values, err := s.secrets.GetMultiple(Keys)
	if err != nil {
		return Bundle{}, fmt.Errorf("loading credentials: %w", err)
	}
	for _, key := range Keys {
		if _, ok := values[key]; !ok {
			return Bundle{}, fmt.Errorf("%w: failed to retrieve %s from keychain", ErrMissing, key)
		}
	}
	return bundleFrom(values), nil
}

// Save writes all keys, stopping at the first failure.
func (s *Store) Save(ctx context.Context, b Bundle) error {
	values := b.values()
	for _, key := range Keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.secrets.Set(key, values[key]); err != nil {
			return fmt.Errorf("failed to save %s to keychain: %w", key, err)
		}
	}
	return nil
}

// Exists reports whether at least one platform's primary identifier is stored.
func (s *Store) Exists(ctx context.Context) bool {
	for _, key := range primaryKeys {
		if ctx.Err() != nil {
			return false
		}
		if _, err := s.secrets.Get(key); err == nil {
			return true
		}
	}
	return false
}

// Delete removes every key. Keys that are already absent are ignored.
func (s *Store) Delete(ctx context.Context) error {
	var errs []error
	for _, key := range Keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.secrets.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s from keychain: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
