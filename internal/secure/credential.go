// Package secure keeps the Vault password out of plain process memory
// between flag parsing and client authentication.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Credential holds a single sensitive string inside a memguard enclave:
// encrypted at rest in memory, mlocked where the platform allows it.
//
// memguard.Enclave has no direct destroy call; Destroy here drops the
// reference and marks the credential unusable. For full cleanup of all
// enclaves call memguard.Purge() on process exit.
type Credential struct {
	enclave *memguard.Enclave
	mu      sync.Mutex
}

// NewCredential copies value into a protected enclave. The caller keeps
// ownership of the input slice and should zero it afterwards.
func NewCredential(value []byte) *Credential {
	return &Credential{enclave: memguard.NewEnclave(value)}
}

// NewCredentialFromString is a convenience wrapper for flag and keyring
// sourced passwords.
func NewCredentialFromString(value string) *Credential {
	return NewCredential([]byte(value))
}

// Reveal decrypts the credential and hands the plaintext to fn inside a
// locked buffer. The buffer is wiped when fn returns; fn must not retain
// the slice.
func (c *Credential) Reveal(fn func(value []byte) error) error {
	c.mu.Lock()
	enclave := c.enclave
	c.mu.Unlock()

	if enclave == nil {
		return fn(nil)
	}

	locked, err := enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy marks the credential unusable. Idempotent; after Destroy,
// Reveal sees an empty value.
func (c *Credential) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enclave = nil
}
