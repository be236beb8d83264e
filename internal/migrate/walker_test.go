package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

func testLogger() *logging.Logger {
	return logging.New(logging.LevelError, true)
}

func TestWalkYieldsEverySecretOnce(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]map[string]string{
		"root/a":       {"k": "1"},
		"root/sub/b":   {"k": "2"},
		"root/sub/c/d": {"k": "3"},
	})
	w := NewWalker(store, testLogger())

	seen := map[string]int{}
	err := w.Walk(context.Background(), "root", func(sec secretstore.Secret) error {
		seen[sec.FullPath()]++
		return nil
	})
	require.NoError(t, err)

	// Set equality: exactly those three, once each, whatever the order.
	assert.Equal(t, map[string]int{
		"root/a":       1,
		"root/sub/b":   1,
		"root/sub/c/d": 1,
	}, seen)
}

func TestWalkNodeThatIsBothLeafAndFolder(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]map[string]string{
		"root/db":         {"k": "own"},
		"root/db/replica": {"k": "child"},
	})
	w := NewWalker(store, testLogger())

	secrets, err := w.Collect(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]string{
		"root/db":         {"k": "own"},
		"root/db/replica": {"k": "child"},
	}, secrets)
}

func TestWalkRootThatIsItselfASecret(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]map[string]string{
		"root/only": {"k": "v"},
	})
	w := NewWalker(store, testLogger())

	secrets, err := w.Collect(context.Background(), "root/only")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]string{"root/only": {"k": "v"}}, secrets)
}

func TestWalkMissingRootFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore(nil)
	w := NewWalker(store, testLogger())

	_, err := w.Collect(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, secretstore.IsNotFound(err))
	assert.Contains(t, err.Error(), "nowhere")
}

func TestWalkAbortsOnStoreError(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]map[string]string{
		"root/a": {"k": "1"},
		"root/b": {"k": "2"},
	})
	store.failReads["root/b"] = secretstore.PermissionError{Path: "root/b"}
	w := NewWalker(store, testLogger())

	secrets, err := w.Collect(context.Background(), "root")
	require.Error(t, err)
	assert.True(t, secretstore.IsPermissionDenied(err))
	assert.Contains(t, err.Error(), "root/b")
	// Partial results are discarded, not returned.
	assert.Nil(t, secrets)
}

func TestWalkStopsWhenCallbackFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]map[string]string{
		"root/a": {"k": "1"},
		"root/b": {"k": "2"},
		"root/c": {"k": "3"},
	})
	w := NewWalker(store, testLogger())

	boom := errors.New("boom")
	calls := 0
	err := w.Walk(context.Background(), "root", func(secretstore.Secret) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
