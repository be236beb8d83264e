package commands

import (
	"errors"

	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/credentials"
	dserrors "github.com/systmms/vaultmig/internal/errors"
	"github.com/systmms/vaultmig/internal/secure"
	"github.com/systmms/vaultmig/internal/vault"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

// newStore builds the Vault client from the runtime configuration.
// For ldap/userpass auth the password is sourced from the --password
// flag, then VAULT_PASSWORD, then the OS keyring (stored via
// 'vaultmig login'). Token auth needs no password at all.
func newStore(cfg *config.Config) (secretstore.Store, error) {
	if cfg.AuthMethod != vault.AuthMethodToken && cfg.Password == nil {
		stored, err := credentials.Lookup(cfg.Username)
		if err != nil {
			if !errors.Is(err, credentials.ErrNotStored) {
				return nil, err
			}
			return nil, dserrors.UserError{
				Message:    "No vault password available",
				Suggestion: "Pass --password, set VAULT_PASSWORD, or store one with 'vaultmig login'",
			}
		}
		cfg.Password = secure.NewCredentialFromString(stored)
	}

	return vault.New(vault.Config{
		Address:    cfg.VaultURL,
		Namespace:  cfg.VaultNamespace,
		Mountpoint: cfg.VaultMountpoint,
		AuthMethod: cfg.AuthMethod,
		Username:   cfg.Username,
	}, cfg.Password, cfg.Logger), nil
}
