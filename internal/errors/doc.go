// Package errors provides error handling conventions for the bkp CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, exit code constants
// following standard Unix conventions, and thin forwards to
// github.com/cockroachdb/errors for wrapping.
//
// # Exit Codes
//
//   - ExitSuccess (0): the run completed, including runs where entries were skipped
//   - ExitUser (1): malformed manifest, invalid flags or configuration
//   - ExitSystem (2): configuration directory failure or a fatal copy error
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. The domain constructors also mark a sentinel:
//
//	err := bkperrors.NewManifestError(parseErr, cfg.ManifestPath())
//	bkperrors.Is(err, bkperrors.ErrInvalidManifest) // true
//	os.Exit(bkperrors.ExitCode(err))
package errors
