package errors

import "github.com/cockroachdb/errors"

// The helpers below forward to cockroachdb/errors so callers only need
// this package for both exit handling and wrapping.

// New returns an error with a stack trace attached.
func New(msg string) error { return errors.New(msg) }

// Newf formats an error message and attaches a stack trace.
func Newf(format string, args ...any) error { return errors.Newf(format, args...) }

// Wrap annotates err with msg. Wrap returns nil if err is nil.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. Wrapf returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// WithHint decorates err with a user-facing hint.
func WithHint(err error, hint string) error { return errors.WithHint(err, hint) }

// FlattenHints returns the hints attached anywhere in err's chain.
func FlattenHints(err error) string { return errors.FlattenHints(err) }

// Mark makes err match reference under Is while keeping its own message.
func Mark(err, reference error) error { return errors.Mark(err, reference) }
