package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bkp/internal/logging"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidLogFormat indicates an unsupported log_format value.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrSamePath indicates the manifest and the log would be the same file.
	ErrSamePath = errors.New("manifest_file and log_file must differ")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	for _, f := range []struct {
		field, value string
	}{
		{"manifest_file", cfg.ManifestFile},
		{"log_file", cfg.LogFile},
	} {
		if err := validatePath(f.value); err != nil {
			errs = append(errs, &PathError{Field: f.field, Path: f.value, Err: err})
		}
	}

	if _, ok := logging.ParseFormat(cfg.LogFormat); !ok {
		errs = append(errs, &ValueError{Field: "log_format", Value: cfg.LogFormat, Err: ErrInvalidLogFormat})
	}

	if len(errs) == 0 && filepath.Clean(cfg.ManifestFile) == filepath.Clean(cfg.LogFile) {
		errs = append(errs, ErrSamePath)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "." || cleaned == string(filepath.Separator) {
		return ErrInvalidPath
	}
	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ValueError represents an unsupported value for a field.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *ValueError) Unwrap() error {
	return e.Err
}
