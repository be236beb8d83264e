package migrate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rules(pairs ...interface{}) []RoutingRule {
	var out []RoutingRule
	for i := 0; i < len(pairs); i += 2 {
		patterns := pairs[i].([]string)
		rule := RoutingRule{To: pairs[i+1].(string)}
		for _, p := range patterns {
			rule.By = append(rule.By, regexp.MustCompile(p))
		}
		out = append(out, rule)
	}
	return out
}

func TestMatchSubfolderFirstRuleWins(t *testing.T) {
	t.Parallel()

	rr := rules(
		[]string{".*HOME.*"}, "home",
		[]string{".*"}, "catchall",
	)

	assert.Equal(t, "home", MatchSubfolder("device_HOMEfoo", rr))
	assert.Equal(t, "catchall", MatchSubfolder("device_OTHER", rr))
}

func TestMatchSubfolderAnyPatternInRule(t *testing.T) {
	t.Parallel()

	rr := rules([]string{"^db_", "^database_"}, "databases")

	assert.Equal(t, "databases", MatchSubfolder("db_primary", rr))
	assert.Equal(t, "databases", MatchSubfolder("database_replica", rr))
	assert.Equal(t, "", MatchSubfolder("cache_primary", rr))
}

func TestMatchSubfolderIsUnanchoredSearch(t *testing.T) {
	t.Parallel()

	rr := rules([]string{"HOME"}, "home")

	// Substring search, not a full match.
	assert.Equal(t, "home", MatchSubfolder("device_HOMEfoo", rr))
	assert.Equal(t, "home", MatchSubfolder("HOME", rr))
}

func TestMatchSubfolderCaseSensitive(t *testing.T) {
	t.Parallel()

	rr := rules([]string{"HOME"}, "home")
	assert.Equal(t, "", MatchSubfolder("device_homefoo", rr))
}

func TestMatchSubfolderNoRules(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", MatchSubfolder("anything", nil))
	assert.Equal(t, "", MatchSubfolder("anything", []RoutingRule{}))
}

func TestMatchSubfolderDeterministic(t *testing.T) {
	t.Parallel()

	rr := rules(
		[]string{"a"}, "first",
		[]string{"a"}, "second",
	)
	for i := 0; i < 10; i++ {
		assert.Equal(t, "first", MatchSubfolder("banana", rr))
	}
}
