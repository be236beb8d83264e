package migrate

import (
	"fmt"

	"github.com/systmms/vaultmig/pkg/secretstore"
)

// Scheme is one source-to-destination migration rule. From and To are
// clean store paths; Subschemes optionally route secrets into
// subfolders of To by name.
type Scheme struct {
	From       string
	To         string
	Subschemes []RoutingRule
}

// Resolve computes the destination path for a secret discovered under
// s.From. The relative subpath between From and the secret's parent is
// preserved; only the prefix changes, plus an optional routed subfolder
// in front of the leaf name.
//
// A secret sitting exactly on the scheme root is the one exception:
// it moves onto To verbatim and Subschemes are not consulted, because
// routing it would push it below the destination root and rename its
// leaf to To's last segment at the same time.
//
// The planner walks the tree rooted at From, so every secret it hands
// in is prefix-contained; a violation means a caller bug and surfaces
// as an error rather than a silent misroute.
func (s Scheme) Resolve(sec secretstore.Secret) (string, error) {
	rel, ok := secretstore.TrimPathPrefix(sec.FullPath(), s.From)
	if !ok {
		return "", fmt.Errorf("secret %s is not under scheme root %s", sec.FullPath(), s.From)
	}

	// The secret sits on the scheme root itself: it moves onto the
	// destination root path, nothing below it to route.
	if rel == "" {
		return secretstore.CleanPath(s.To), nil
	}

	relParent, name := secretstore.ParentAndName(rel)
	subfolder := MatchSubfolder(name, s.Subschemes)
	return secretstore.JoinPath(s.To, relParent, subfolder, name), nil
}
