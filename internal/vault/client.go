// Package vault implements pkg/secretstore.Store against HashiCorp
// Vault's KV version 2 engine over its HTTP API.
package vault

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"context"

	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/internal/secure"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

const (
	DefaultTimeout = 30 * time.Second

	AuthMethodLDAP     = "ldap"
	AuthMethodUserpass = "userpass"
	AuthMethodToken    = "token"
)

// Config holds the Vault connection parameters.
type Config struct {
	Address    string // Vault server address, e.g. https://vault.example.com:8200
	Namespace  string // Vault namespace (Vault Enterprise), optional
	Mountpoint string // KV v2 engine mountpoint, e.g. "secrets"
	AuthMethod string // ldap (default), userpass or token
	Username   string // for ldap/userpass auth
	Token      string // for token auth; VAULT_TOKEN is the usual source
	TLSSkip    bool   // skip TLS verification (not recommended)
}

// Client talks to one KV v2 mount. It implements secretstore.Store.
// Calls are synchronous, one request at a time; there is no internal
// retry, that policy belongs to the caller.
type Client struct {
	config   Config
	password *secure.Credential
	token    string
	logger   *logging.Logger
	httpc    *http.Client
}

// New creates a client. password may be nil for token auth. The first
// store call authenticates lazily.
func New(cfg Config, password *secure.Credential, logger *logging.Logger) *Client {
	if cfg.AuthMethod == "" {
		cfg.AuthMethod = AuthMethodLDAP
	}
	httpc := &http.Client{Timeout: DefaultTimeout}
	if cfg.TLSSkip {
		httpc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		config:   cfg,
		password: password,
		logger:   logger,
		httpc:    httpc,
	}
}

var _ secretstore.Store = (*Client)(nil)

// List returns the child segments below path from the metadata endpoint.
func (c *Client) List(ctx context.Context, path string) ([]string, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, "LIST", c.metadataURL(path), nil, path)
	if err != nil {
		return nil, err
	}

	var response struct {
		Data struct {
			Keys []string `json:"keys"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode list response for %s: %w", path, err)
	}
	return response.Data.Keys, nil
}

// Read returns the most recent non-deleted version of the secret at
// path. A soft-deleted version answers with 404 plus its version
// metadata; the client then walks back version by version until it
// finds a live one, mirroring KV v2's soft-delete model.
func (c *Client) Read(ctx context.Context, path string) (map[string]string, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	version := 0 // 0 means current
	for {
		data, meta, err := c.readVersion(ctx, path, version)
		if err != nil {
			return nil, err
		}
		if meta.DeletionTime == "" && data != nil {
			return toStringMap(data), nil
		}
		if meta.Version <= 1 {
			// Every version is deleted; nothing live at this path.
			return nil, secretstore.NotFoundError{Path: path}
		}
		c.logger.Debug("version %d at %s is deleted, trying version %d", meta.Version, path, meta.Version-1)
		version = meta.Version - 1
	}
}

// Write stores values at path as a new KV v2 version.
func (c *Client) Write(ctx context.Context, path string, values map[string]string) (int, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return 0, err
	}

	payload, err := json.Marshal(map[string]interface{}{"data": values})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal secret data: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.dataURL(path, 0), payload, path)
	if err != nil {
		return 0, err
	}

	var response struct {
		Data struct {
			Version int `json:"version"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("failed to decode write response for %s: %w", path, err)
	}
	c.logger.Debug("wrote version %d at %s", response.Data.Version, path)
	return response.Data.Version, nil
}

// Delete destroys the secret at exactly path: metadata and all versions.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, c.metadataURL(path), nil, path)
	return err
}

type versionMetadata struct {
	Version      int    `json:"version"`
	DeletionTime string `json:"deletion_time"`
}

// deletedVersionMetadata recognizes the 404 body Vault sends for a
// soft-deleted (or destroyed) version: data.metadata still carries the
// version number and deletion_time. A path that holds nothing at all
// answers with a plain {"errors":[...]} body and no metadata.
func deletedVersionMetadata(body []byte) (versionMetadata, bool) {
	var response struct {
		Data struct {
			Metadata versionMetadata `json:"metadata"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return versionMetadata{}, false
	}
	if response.Data.Metadata.Version == 0 {
		return versionMetadata{}, false
	}
	return response.Data.Metadata, true
}

func (c *Client) readVersion(ctx context.Context, path string, version int) (map[string]interface{}, versionMetadata, error) {
	body, err := c.do(ctx, http.MethodGet, c.dataURL(path, version), nil, path)
	if err != nil {
		if secretstore.IsNotFound(err) {
			if meta, ok := deletedVersionMetadata(body); ok {
				return nil, meta, nil
			}
		}
		return nil, versionMetadata{}, err
	}

	var response struct {
		Data struct {
			Data     map[string]interface{} `json:"data"`
			Metadata versionMetadata        `json:"metadata"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, versionMetadata{}, fmt.Errorf("failed to decode read response for %s: %w", path, err)
	}
	return response.Data.Data, response.Data.Metadata, nil
}

// do issues one request with auth headers and maps Vault's status codes
// onto the secretstore error types.
func (c *Client) do(ctx context.Context, method, url string, payload []byte, path string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Vault-Token", c.token)
	if c.config.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.config.Namespace)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to vault failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The body is returned alongside the error: KV v2 answers reads
		// of soft-deleted versions with a 404 that still carries the
		// version metadata, which readVersion needs to inspect.
		body, _ := io.ReadAll(resp.Body)
		return body, secretstore.NotFoundError{Path: path}
	case resp.StatusCode == http.StatusForbidden:
		return nil, secretstore.PermissionError{Path: path}
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vault returned status %d for %s: %s", resp.StatusCode, path, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault response: %w", err)
	}
	return body, nil
}

func (c *Client) dataURL(path string, version int) string {
	url := c.baseURL() + "/data/" + strings.TrimPrefix(secretstore.CleanPath(path), "/")
	if version > 0 {
		url += "?version=" + strconv.Itoa(version)
	}
	return url
}

func (c *Client) metadataURL(path string) string {
	return c.baseURL() + "/metadata/" + strings.TrimPrefix(secretstore.CleanPath(path), "/")
}

func (c *Client) baseURL() string {
	return strings.TrimSuffix(c.config.Address, "/") + "/v1/" + strings.Trim(c.config.Mountpoint, "/")
}

// toStringMap flattens KV v2's loosely typed data into the string
// value-map the engine works with.
func toStringMap(data map[string]interface{}) map[string]string {
	values := make(map[string]string, len(data))
	for name, raw := range data {
		switch v := raw.(type) {
		case string:
			values[name] = v
		case bool:
			values[name] = strconv.FormatBool(v)
		case float64:
			values[name] = strconv.FormatFloat(v, 'g', -1, 64)
		case json.Number:
			values[name] = v.String()
		case nil:
			values[name] = ""
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				values[name] = fmt.Sprintf("%v", v)
				continue
			}
			values[name] = string(encoded)
		}
	}
	return values
}
