// Package config holds the runtime configuration shared by all
// vaultmig commands and the migration scheme file loader.
package config

import (
	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/internal/secure"
)

// Config holds the runtime configuration
type Config struct {
	Logger *logging.Logger

	VaultURL        string
	VaultNamespace  string
	VaultMountpoint string
	AuthMethod      string
	Username        string

	// Password is only populated once a command actually needs the
	// store; see commands.newStore for the flag/env/keyring chain.
	Password *secure.Credential
}
