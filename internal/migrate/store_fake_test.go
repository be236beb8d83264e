package migrate

import (
	"context"
	"sort"

	"github.com/systmms/vaultmig/pkg/secretstore"
)

// fakeStore is an in-memory secretstore.Store with per-path failure
// injection and call accounting, used by the engine tests.
type fakeStore struct {
	secrets map[string]map[string]string

	reads   int
	lists   int
	writes  []string
	deletes []string

	failReads   map[string]error
	failLists   map[string]error
	failWrites  map[string]error
	failDeletes map[string]error
}

func newFakeStore(seed map[string]map[string]string) *fakeStore {
	s := &fakeStore{
		secrets:     make(map[string]map[string]string, len(seed)),
		failReads:   make(map[string]error),
		failLists:   make(map[string]error),
		failWrites:  make(map[string]error),
		failDeletes: make(map[string]error),
	}
	for path, values := range seed {
		s.secrets[secretstore.CleanPath(path)] = copyValues(values)
	}
	return s
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func (s *fakeStore) List(_ context.Context, path string) ([]string, error) {
	s.lists++
	if err := s.failLists[path]; err != nil {
		return nil, err
	}

	path = secretstore.CleanPath(path)
	// A segment present as both leaf and folder shows up twice, once
	// as "name" and once as "name/", the way KV v2 listings report it.
	children := make(map[string]bool)
	for full := range s.secrets {
		rest, ok := secretstore.TrimPathPrefix(full, path)
		if !ok || rest == "" {
			continue
		}
		segs := secretstore.SplitPath(rest)
		if len(segs) == 1 {
			children[segs[0]] = true
		} else {
			children[segs[0]+"/"] = true
		}
	}

	if len(children) == 0 {
		return nil, secretstore.NotFoundError{Path: path}
	}
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fakeStore) Read(_ context.Context, path string) (map[string]string, error) {
	s.reads++
	if err := s.failReads[path]; err != nil {
		return nil, err
	}
	values, ok := s.secrets[secretstore.CleanPath(path)]
	if !ok {
		return nil, secretstore.NotFoundError{Path: path}
	}
	return copyValues(values), nil
}

func (s *fakeStore) Write(_ context.Context, path string, values map[string]string) (int, error) {
	if err := s.failWrites[path]; err != nil {
		return 0, err
	}
	s.secrets[secretstore.CleanPath(path)] = copyValues(values)
	s.writes = append(s.writes, path)
	return len(s.writes), nil
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	if err := s.failDeletes[path]; err != nil {
		return err
	}
	path = secretstore.CleanPath(path)
	if _, ok := s.secrets[path]; !ok {
		return secretstore.NotFoundError{Path: path}
	}
	delete(s.secrets, path)
	s.deletes = append(s.deletes, path)
	return nil
}

var _ secretstore.Store = (*fakeStore)(nil)
