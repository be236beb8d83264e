// Package secretstore defines the storage contract for hierarchical,
// versioned secret stores.
//
// A secret store is a tree of slash-delimited paths. A path may hold a
// secret (a flat map of string fields), child paths, or both at once --
// KV v2 style engines expose "name" and "name/" side by side in listings
// and both forms are valid here.
//
// The Store interface is intentionally small: the four calls the
// migration engine needs, each blocking and context-aware, with no retry
// policy of its own. Implementations must return NotFoundError for absent
// paths and PermissionError for denied ones so callers can branch on the
// failure kind with errors.As.
package secretstore

import (
	"context"
	"errors"
	"strings"
)

// Store is the client-side contract for a hierarchical secret store.
type Store interface {
	// List returns the child segments directly below path. Folder
	// children carry a trailing slash, leaf children do not; a segment
	// may appear in both forms. Returns NotFoundError when the path has
	// no children.
	List(ctx context.Context, path string) ([]string, error)

	// Read returns the most recent live value-map of the secret at path.
	// Returns NotFoundError when no secret lives at exactly this path.
	Read(ctx context.Context, path string) (map[string]string, error)

	// Write stores values at path as a new version and returns the new
	// version number. Pre-existing fields at the destination are
	// superseded, never merged.
	Write(ctx context.Context, path string, values map[string]string) (int, error)

	// Delete permanently destroys the secret at exactly path. It does
	// not descend into children. Returns NotFoundError when nothing is
	// there, which callers performing idempotent cleanup treat as done.
	Delete(ctx context.Context, path string) error
}

// Secret is one stored secret: its parent folder path, its leaf name and
// its value-map. The engine relocates secrets; it never mutates Values.
type Secret struct {
	Path   string
	Name   string
	Values map[string]string
}

// FullPath returns the secret's complete store path.
func (s Secret) FullPath() string {
	return JoinPath(s.Path, s.Name)
}

// NotFoundError indicates that a path holds no secret (Read, Delete) or
// no children (List).
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return "not found: " + e.Path
}

// PermissionError indicates the store denied access to a path.
type PermissionError struct {
	Path string
}

func (e PermissionError) Error() string {
	return "permission denied: " + e.Path
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsPermissionDenied reports whether err is, or wraps, a PermissionError.
func IsPermissionDenied(err error) bool {
	var pe PermissionError
	return errors.As(err, &pe)
}

// CleanPath normalizes a store path: trims surrounding slashes and
// collapses runs of slashes. The empty path stays empty.
func CleanPath(p string) string {
	return JoinPath(SplitPath(p)...)
}

// SplitPath splits a store path into its non-empty segments.
func SplitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// JoinPath joins segments into a store path, skipping empty ones.
func JoinPath(segs ...string) string {
	var parts []string
	for _, s := range segs {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// ParentAndName splits a full path into its parent folder and leaf name.
func ParentAndName(p string) (parent, name string) {
	segs := SplitPath(p)
	if len(segs) == 0 {
		return "", ""
	}
	return strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1]
}

// TrimPathPrefix removes the segment-wise prefix from p. It reports false
// when prefix is not a segment-wise prefix of p. Both arguments are
// cleaned before comparison; the returned remainder is a clean path,
// empty when p equals prefix.
func TrimPathPrefix(p, prefix string) (string, bool) {
	pSegs := SplitPath(p)
	preSegs := SplitPath(prefix)
	if len(preSegs) > len(pSegs) {
		return "", false
	}
	for i, s := range preSegs {
		if pSegs[i] != s {
			return "", false
		}
	}
	return strings.Join(pSegs[len(preSegs):], "/"), true
}

// HasPathPrefix reports whether prefix is a segment-wise prefix of p
// (including equality).
func HasPathPrefix(p, prefix string) bool {
	_, ok := TrimPathPrefix(p, prefix)
	return ok
}
