package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/vault"
)

// fakeVault is a minimal KV v2 endpoint backing the command tests.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]map[string]string
	writes  int
}

func newFakeVault(seed map[string]map[string]string) *fakeVault {
	if seed == nil {
		seed = map[string]map[string]string{}
	}
	return &fakeVault{secrets: seed}
}

func (v *fakeVault) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		defer v.mu.Unlock()

		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/secrets/data/"):
			v.handleData(w, r, strings.TrimPrefix(r.URL.Path, "/v1/secrets/data/"))
		case strings.HasPrefix(r.URL.Path, "/v1/secrets/metadata/"):
			v.handleMetadata(w, r, strings.TrimPrefix(r.URL.Path, "/v1/secrets/metadata/"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (v *fakeVault) handleData(w http.ResponseWriter, r *http.Request, path string) {
	switch r.Method {
	case http.MethodGet:
		values, ok := v.secrets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"data":     values,
				"metadata": map[string]interface{}{"version": 1, "deletion_time": ""},
			},
		})
	case http.MethodPost:
		var payload struct {
			Data map[string]string `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		v.secrets[path] = payload.Data
		v.writes++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"version": v.writes},
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (v *fakeVault) handleMetadata(w http.ResponseWriter, r *http.Request, path string) {
	switch r.Method {
	case "LIST":
		children := map[string]bool{}
		for full := range v.secrets {
			rest := strings.TrimPrefix(full, path+"/")
			if rest == full {
				continue
			}
			if i := strings.Index(rest, "/"); i >= 0 {
				children[rest[:i]+"/"] = true
			} else {
				children[rest] = true
			}
		}
		if len(children) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		keys := make([]string, 0, len(children))
		for k := range children {
			keys = append(keys, k)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"keys": keys},
		})
	case http.MethodDelete:
		if _, ok := v.secrets[path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(v.secrets, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeSecretsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func tokenConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	t.Setenv("VAULT_TOKEN", "unit-test-token")
	cfg := testConfig()
	cfg.VaultURL = serverURL
	cfg.VaultMountpoint = "secrets"
	cfg.AuthMethod = vault.AuthMethodToken
	return cfg
}

func TestSetOverwritesSecrets(t *testing.T) {
	fake := newFakeVault(map[string]map[string]string{
		"app/db": {"user": "old", "extra": "kept-by-add-not-set"},
	})
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	cfg := tokenConfig(t, server.URL)
	file := writeSecretsFile(t, `{"app/db": {"user": "new"}}`)

	cmd := NewSetCommand(cfg)
	cmd.SetArgs([]string{file})
	require.NoError(t, cmd.Execute())

	// set replaces the whole value-map.
	assert.Equal(t, map[string]string{"user": "new"}, fake.secrets["app/db"])
}

func TestSetDryRunWritesNothing(t *testing.T) {
	fake := newFakeVault(nil)
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	cfg := tokenConfig(t, server.URL)
	file := writeSecretsFile(t, `{"app/db": {"user": "new"}}`)

	cmd := NewSetCommand(cfg)
	cmd.SetArgs([]string{file, "--dry-run"})
	require.NoError(t, cmd.Execute())

	assert.Zero(t, fake.writes)
}

func TestAddMergesIntoExistingValues(t *testing.T) {
	fake := newFakeVault(map[string]map[string]string{
		"app/db": {"user": "svc", "pass": "old"},
	})
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	cfg := tokenConfig(t, server.URL)
	file := writeSecretsFile(t, `{"app/db": {"pass": "new", "host": "db1"}}`)

	cmd := NewAddCommand(cfg)
	cmd.SetArgs([]string{file})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, map[string]string{
		"user": "svc",
		"pass": "new",
		"host": "db1",
	}, fake.secrets["app/db"])
}

func TestAddCreatesMissingPath(t *testing.T) {
	fake := newFakeVault(nil)
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	cfg := tokenConfig(t, server.URL)
	file := writeSecretsFile(t, `{"app/new": {"k": "v"}}`)

	cmd := NewAddCommand(cfg)
	cmd.SetArgs([]string{file})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, map[string]string{"k": "v"}, fake.secrets["app/new"])
}
