package errors

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes of the bkp binary.
const (
	// ExitSuccess: every entry was secured or skipped.
	ExitSuccess = 0

	// ExitUser: malformed manifest, unknown entry, bad flags or config.yaml.
	ExitUser = 1

	// ExitSystem: no config directory, a fatal copy failure or an interrupted run.
	ExitSystem = 2
)

// Sentinels marked onto the errors returned to the CLI. Match them with Is.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrConfigDir       = errors.New("configuration directory unavailable")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrUnknownEntry    = errors.New("unknown backup entry")
	ErrInterrupted     = errors.New("backup interrupted")
)

// ExitError carries the process exit code for err and an optional line
// telling the user what to do next.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError reports an unreadable or invalid config.yaml.
func NewConfigError(err error) *ExitError {
	return NewUserError(errors.Mark(err, ErrInvalidConfig), "Fix config.yaml or inspect it with: bkp config")
}

// NewConfigDirError reports a configuration directory that cannot be
// located or created. Nothing can be logged in that case, so the run stops.
func NewConfigDirError(err error, suggestion string) *ExitError {
	err = errors.Wrap(err, "unable to find or create a config directory")
	return NewSystemError(errors.Mark(err, ErrConfigDir), suggestion)
}

// NewManifestError reports a manifest at path that failed to parse.
func NewManifestError(err error, path string) *ExitError {
	return NewUserError(errors.Mark(err, ErrInvalidManifest), "Fix the line above in "+path)
}

// NewInterruptedError reports a run stopped by cancellation of its context
// before every entry was processed.
func NewInterruptedError(err error) *ExitError {
	err = errors.Wrap(err, "backup interrupted")
	return NewSystemError(errors.Mark(err, ErrInterrupted), "Run again to back up the remaining entries")
}

// Error returns the message of the underlying error, or the exit code
// when there is none.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Hint returns the suggestion, falling back to hints attached with WithHint.
func (e *ExitError) Hint() string {
	if e.Suggestion != "" || e.Err == nil {
		return e.Suggestion
	}
	return errors.FlattenHints(e.Err)
}

// ExitCode reports the exit code carried by err. A context error without an
// ExitError maps to ExitSystem, anything else to ExitUser; nil is ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitSystem
	}
	return ExitUser
}
