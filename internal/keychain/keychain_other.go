//go:build !darwin

package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// SystemStore stores secrets in the platform keyring (Secret Service on
// Linux, Credential Manager on Windows).
type SystemStore struct {
	service string
}

// NewSystemStore creates a keyring-backed secret store whose entries all
// share the given service name.
func NewSystemStore(service string) *SystemStore {
	return &SystemStore{service: service}
}

func (s *SystemStore) Set(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", key, err)
	}
	return nil
}

func (s *SystemStore) Get(key string) (string, error) {
	val, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("keyring get %q: %w", key, err)
	}
	return val, nil
}

func (s *SystemStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}

func (s *SystemStore) GetMultiple(keys []string) (map[string]string, error) {
	return getMultiple(s.Get, keys)
}
