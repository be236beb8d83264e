package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	t.Parallel()

	err := UserError{
		Message:    "Failed to read secret",
		Details:    "connection refused",
		Suggestion: "Check that Vault is reachable",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Failed to read secret")
	assert.Contains(t, msg, "Details: connection refused")
	assert.Contains(t, msg, "Try: Check that Vault is reachable")
}

func TestUserErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := UserError{Message: "outer", Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	err := UserError{Err: errors.New("low level detail")}
	assert.Contains(t, err.Error(), "low level detail")
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := ConfigError{
		Field:      "subschemes[0].by",
		Value:      "[invalid",
		Message:    "invalid regular expression",
		Suggestion: "Fix the pattern syntax",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Configuration error in field 'subschemes[0].by'")
	assert.Contains(t, msg, "(value: [invalid)")
	assert.Contains(t, msg, "invalid regular expression")
	assert.Contains(t, msg, "Fix the pattern syntax")
}
