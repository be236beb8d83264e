// Package credentials stores the Vault password in the operating
// system's keyring (Secret Service, Keychain, Credential Manager) so the
// password does not have to travel on the command line for every run.
package credentials

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// service is the keyring service name under which vaultmig stores
// passwords, one entry per Vault username.
const service = "vaultmig"

// ErrNotStored indicates that no password is stored for the username.
var ErrNotStored = errors.New("no stored credential for this username")

// Store saves the password for username in the OS keyring, replacing any
// previous entry.
func Store(username, password string) error {
	return keyring.Set(service, username, password)
}

// Lookup returns the stored password for username, or ErrNotStored.
func Lookup(username string) (string, error) {
	password, err := keyring.Get(service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotStored
		}
		return "", err
	}
	return password, nil
}

// Erase removes the stored password for username. Removing an absent
// entry is not an error.
func Erase(username string) error {
	err := keyring.Delete(service, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
