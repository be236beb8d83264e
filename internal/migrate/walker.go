package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

// Walker enumerates every secret reachable from a root path, depth
// first, in listing order. A walk reflects one point in time: if the
// tree changes underneath it, issue a fresh walk.
type Walker struct {
	store  secretstore.Store
	logger *logging.Logger
}

// NewWalker creates a walker over store.
func NewWalker(store secretstore.Store, logger *logging.Logger) *Walker {
	return &Walker{store: store, logger: logger}
}

// Walk calls fn once for each secret under root. A path may hold a
// secret and children at the same time; the walker yields the secret
// first, then descends. Any store failure other than the expected
// not-found probes aborts the whole walk with the offending path
// attached -- callers must not act on a partial tree. An error from fn
// aborts the walk too.
func (w *Walker) Walk(ctx context.Context, root string, fn func(secretstore.Secret) error) error {
	return w.walk(ctx, secretstore.CleanPath(root), fn)
}

func (w *Walker) walk(ctx context.Context, path string, fn func(secretstore.Secret) error) error {
	// Each node is probed for both roles: leaf (has a secret) and
	// folder (has children). Not-found on one probe just means the
	// node does not play that role.
	values, readErr := w.store.Read(ctx, path)
	hasSecret := readErr == nil
	if readErr != nil && !secretstore.IsNotFound(readErr) {
		return fmt.Errorf("reading %s: %w", path, readErr)
	}

	children, listErr := w.store.List(ctx, path)
	if listErr != nil && !secretstore.IsNotFound(listErr) {
		return fmt.Errorf("listing %s: %w", path, listErr)
	}
	if !hasSecret && listErr != nil {
		return fmt.Errorf("walking %s: %w", path, listErr)
	}

	if hasSecret {
		parent, name := secretstore.ParentAndName(path)
		w.logger.Debug("found secret at %s", path)
		if err := fn(secretstore.Secret{Path: parent, Name: name, Values: values}); err != nil {
			return err
		}
	}

	// KV v2 listings report "name" and "name/" separately when a path
	// is both leaf and folder; each segment is descended once.
	seen := make(map[string]bool, len(children))
	for _, key := range children {
		segment := strings.TrimSuffix(key, "/")
		if segment == "" || seen[segment] {
			continue
		}
		seen[segment] = true
		if err := w.walk(ctx, secretstore.JoinPath(path, segment), fn); err != nil {
			return err
		}
	}
	return nil
}

// Collect runs a walk and gathers the results as a path-indexed map,
// the shape shared by backups and the get command.
func (w *Walker) Collect(ctx context.Context, root string) (map[string]map[string]string, error) {
	secrets := make(map[string]map[string]string)
	err := w.Walk(ctx, root, func(sec secretstore.Secret) error {
		secrets[sec.FullPath()] = sec.Values
		return nil
	})
	if err != nil {
		return nil, err
	}
	return secrets, nil
}
