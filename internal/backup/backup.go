// Package backup reads and writes vaultmig's JSON secret dumps: a map
// of full secret paths to their value-maps. The same format serves as
// backup output and as set/add input.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	dserrors "github.com/systmms/vaultmig/internal/errors"
)

// SecretsByPath maps a full secret path to its value-map.
type SecretsByPath map[string]map[string]string

// DefaultFilename returns the timestamped default backup file name.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("backup_vault_%s.json", now.Format("2006-01-02_15-04-05"))
}

// WriteFile writes secrets as indented JSON to path. An existing file
// is never overwritten; backups are too valuable to clobber.
func WriteFile(path string, secrets SecretsByPath) error {
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return dserrors.UserError{
				Message:    fmt.Sprintf("Backup file %s already exists", path),
				Suggestion: "Pick another name with --output, or move the existing file away",
				Err:        err,
			}
		}
		return fmt.Errorf("creating backup file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing backup file %s: %w", path, err)
	}
	return f.Sync()
}

// LoadFile reads a JSON dump produced by WriteFile (or written by
// hand as set/add input).
func LoadFile(path string) (SecretsByPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("Secrets file %s not found", path),
				Suggestion: "Check the path; the file must be JSON of the form {\"<path>\": {\"<field>\": \"<value>\"}}",
				Err:        err,
			}
		}
		return nil, fmt.Errorf("reading secrets file %s: %w", path, err)
	}

	var secrets SecretsByPath
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Secrets file %s is not valid JSON", path),
			Details:    err.Error(),
			Suggestion: "Expected {\"<path>\": {\"<field>\": \"<value>\"}}",
			Err:        err,
		}
	}

	if len(secrets) == 0 {
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Secrets file %s contains no secrets", path),
			Suggestion: "Expected at least one path with a value-map",
		}
	}
	return secrets, nil
}
