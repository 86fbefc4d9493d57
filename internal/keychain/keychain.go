// Package keychain provides secret storage backed by the OS secure store.
//
// Secrets are stored as generic passwords with:
//   - Service: the namespace handed to NewSystemStore (socialhub uses
//     "com.social-hub.credentials" for every platform secret)
//   - Account: the secret key (e.g. "x_consumer_key")
//   - Label: "socialhub: <key>" (for Keychain Access.app visibility)
//
// On macOS secrets are scoped with kSecAttrAccessibleWhenUnlockedThisDeviceOnly:
// never synced to iCloud, never available when the machine is locked.
// Elsewhere the platform keyring (Secret Service, wincred) is used.
package keychain

import "errors"

// ErrNotFound is returned when a secret does not exist in the store.
var ErrNotFound = errors.New("secret not found")

// Store is the interface for secret storage operations.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	GetMultiple(keys []string) (map[string]string, error)
}

// getMultiple reads each key through get, skipping keys that do not exist.
// Any other error aborts the read.
func getMultiple(get func(string) (string, error), keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		val, err := get(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		result[key] = val
	}
	return result, nil
}
