// Package migrate implements the migration planning and execution
// engine: routing rules, destination resolution, tree walking, plan
// building and idempotent plan execution against a secret store.
package migrate

import "regexp"

// RoutingRule routes secrets whose name matches any of the By patterns
// into the To subfolder of the destination. Patterns are compiled at
// config-load time; To is a single path segment.
type RoutingRule struct {
	By []*regexp.Regexp
	To string
}

// MatchSubfolder evaluates rules in order and returns the To of the
// first rule with any pattern matching name. Matching is an unanchored,
// case-sensitive regexp search. Returns "" when no rule matches, which
// routes the secret directly under the destination root.
func MatchSubfolder(name string, rules []RoutingRule) string {
	for _, rule := range rules {
		for _, pattern := range rule.By {
			if pattern.MatchString(name) {
				return rule.To
			}
		}
	}
	return ""
}
