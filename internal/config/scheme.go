package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/vaultmig/internal/errors"
	"github.com/systmms/vaultmig/internal/migrate"
)

// schemeFileSchema is the JSON Schema every scheme file must satisfy.
// Validation runs on the JSON re-marshaling of the parsed document, so
// YAML and JSON inputs are held to the same shape.
const schemeFileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["schemes"],
  "additionalProperties": false,
  "properties": {
    "schemes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "additionalProperties": false,
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "to": {"type": "string", "minLength": 1},
          "subschemes": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["by", "to"],
              "additionalProperties": false,
              "properties": {
                "by": {
                  "type": "array",
                  "minItems": 1,
                  "items": {"type": "string", "minLength": 1}
                },
                "to": {"type": "string", "pattern": "^[^/]+$"}
              }
            }
          }
        }
      }
    }
  }
}`

// SchemeFile is the on-disk shape of a migration scheme document.
type SchemeFile struct {
	Schemes []SchemeDef `yaml:"schemes" json:"schemes"`
}

// SchemeDef maps one source subtree to a destination subtree.
type SchemeDef struct {
	From       string         `yaml:"from" json:"from"`
	To         string         `yaml:"to" json:"to"`
	Subschemes []SubschemeDef `yaml:"subschemes,omitempty" json:"subschemes,omitempty"`
}

// SubschemeDef routes secrets whose name matches any `by` pattern into
// the `to` subfolder. `to` is a single path segment.
type SubschemeDef struct {
	By []string `yaml:"by" json:"by"`
	To string   `yaml:"to" json:"to"`
}

// LoadSchemes reads, validates, and compiles a scheme file. YAML and
// JSON documents are both accepted. Every failure is reported before
// any store I/O happens.
func LoadSchemes(path string) ([]migrate.Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserrors.ConfigError{
				Field:      "scheme-file",
				Value:      path,
				Message:    "scheme file not found",
				Suggestion: "Check the path, or see 'vaultmig migrate --help' for the file format",
			}
		}
		return nil, dserrors.UserError{
			Message:    "Failed to read scheme file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	// YAML is a superset of JSON, so one parser covers both inputs.
	var file SchemeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, dserrors.ConfigError{
			Field:      "scheme-file",
			Value:      path,
			Message:    "invalid YAML/JSON syntax in scheme file",
			Suggestion: "Check for indentation errors, missing quotes, or trailing commas",
		}
	}

	if err := validateSchemeFile(file); err != nil {
		return nil, err
	}

	return compileSchemes(file)
}

func validateSchemeFile(file SchemeFile) error {
	jsonData, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal scheme file for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemeFileSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return dserrors.ConfigError{
			Field:      "scheme-file",
			Message:    "scheme file failed validation:\n  - " + strings.Join(messages, "\n  - "),
			Suggestion: "Each scheme needs 'from' and 'to' paths; each subscheme needs 'by' patterns and a single-segment 'to'",
		}
	}
	return nil
}

func compileSchemes(file SchemeFile) ([]migrate.Scheme, error) {
	schemes := make([]migrate.Scheme, 0, len(file.Schemes))
	for i, def := range file.Schemes {
		scheme := migrate.Scheme{From: def.From, To: def.To}
		for j, sub := range def.Subschemes {
			rule := migrate.RoutingRule{To: sub.To}
			for k, pattern := range sub.By {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return nil, dserrors.ConfigError{
						Field:      fmt.Sprintf("schemes[%d].subschemes[%d].by[%d]", i, j, k),
						Value:      pattern,
						Message:    "invalid regular expression",
						Suggestion: "Fix the pattern; Go RE2 syntax applies (no backreferences or lookaround)",
					}
				}
				rule.By = append(rule.By, re)
			}
			scheme.Subschemes = append(scheme.Subschemes, rule)
		}
		schemes = append(schemes, scheme)
	}

	if err := migrate.ValidateSchemes(schemes); err != nil {
		return nil, err
	}
	return schemes, nil
}
