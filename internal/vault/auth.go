package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	dserrors "github.com/systmms/vaultmig/internal/errors"
)

// ensureAuth authenticates on the first store call and keeps the token
// for the rest of the run.
func (c *Client) ensureAuth(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	return c.Authenticate(ctx)
}

// Authenticate logs in with the configured auth method and stores the
// client token for subsequent requests.
func (c *Client) Authenticate(ctx context.Context) error {
	switch c.config.AuthMethod {
	case AuthMethodToken:
		return c.authenticateToken()
	case AuthMethodLDAP, AuthMethodUserpass:
		return c.authenticateLogin(ctx, c.config.AuthMethod)
	default:
		return dserrors.ConfigError{
			Field:      "auth-method",
			Value:      c.config.AuthMethod,
			Message:    "unsupported authentication method",
			Suggestion: "Supported methods: ldap, userpass, token",
		}
	}
}

func (c *Client) authenticateToken() error {
	if c.config.Token != "" {
		c.token = c.config.Token
		return nil
	}
	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		c.token = token
		return nil
	}
	return dserrors.UserError{
		Message:    "No vault token found",
		Suggestion: "Set the VAULT_TOKEN environment variable or use --auth-method ldap",
	}
}

// authenticateLogin performs the userpass-shaped login flow that LDAP
// and userpass share: POST auth/<method>/login/<username>.
func (c *Client) authenticateLogin(ctx context.Context, method string) error {
	if c.config.Username == "" {
		return dserrors.ConfigError{
			Field:      "username",
			Message:    fmt.Sprintf("username is required for %s auth", method),
			Suggestion: "Pass --username or set the USER environment variable",
		}
	}
	if c.password == nil {
		return dserrors.UserError{
			Message:    "No vault password available",
			Suggestion: "Pass --password, set VAULT_PASSWORD, or store one with 'vaultmig login'",
		}
	}

	return c.password.Reveal(func(password []byte) error {
		if len(password) == 0 {
			return dserrors.UserError{
				Message:    "No vault password available",
				Suggestion: "Pass --password, set VAULT_PASSWORD, or store one with 'vaultmig login'",
			}
		}
		payload, err := json.Marshal(map[string]string{"password": string(password)})
		if err != nil {
			return fmt.Errorf("failed to marshal auth payload: %w", err)
		}
		loginPath := fmt.Sprintf("auth/%s/login/%s", method, c.config.Username)
		return c.performLogin(ctx, loginPath, payload)
	})
}

func (c *Client) performLogin(ctx context.Context, loginPath string, payload []byte) error {
	url := strings.TrimSuffix(c.config.Address, "/") + "/v1/" + loginPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.config.Namespace)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach vault for authentication: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return dserrors.UserError{
			Message:    fmt.Sprintf("Vault authentication failed with status %d", resp.StatusCode),
			Details:    string(body),
			Suggestion: ErrorSuggestion(fmt.Errorf("%s", body)),
		}
	}

	var authResp struct {
		Auth struct {
			ClientToken string `json:"client_token"`
		} `json:"auth"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if authResp.Auth.ClientToken == "" {
		return fmt.Errorf("no token received from vault")
	}

	c.token = authResp.Auth.ClientToken
	c.logger.Debug("authenticated against vault at %s as %s", c.config.Address, c.config.Username)
	return nil
}

// ErrorSuggestion maps common Vault failure text onto a next step for
// the user.
func ErrorSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Check that the Vault server is running and reachable at the configured --vault-url"
	case strings.Contains(errStr, "permission denied"):
		return "Check your Vault token permissions for this path"
	case strings.Contains(errStr, "invalid token"), strings.Contains(errStr, "invalid username or password"):
		return "Your credentials may be expired or wrong. Re-run 'vaultmig login' to store fresh ones"
	case strings.Contains(errStr, "namespace"):
		return "Check the --vault-namespace value"
	case strings.Contains(errStr, "tls"):
		return "Check the TLS configuration of the Vault address"
	default:
		return "Check your Vault configuration and connectivity"
	}
}
