package manifest

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for manifest parsing.
var (
	// ErrMissingSeparator indicates an entry line without an unescaped '='.
	ErrMissingSeparator = errors.New("missing '=' separator")

	// ErrWrongArity indicates the right-hand side is not exactly
	// source, destination, overwrite.
	ErrWrongArity = errors.New("expected 3 comma-separated fields")

	// ErrInvalidOverwrite indicates an overwrite token other than true/false.
	ErrInvalidOverwrite = errors.New("overwrite must be true or false")

	// ErrEmptyName indicates an entry line with nothing left of '='.
	ErrEmptyName = errors.New("entry name is empty")

	// ErrDuplicateName indicates two entries share a name.
	ErrDuplicateName = errors.New("duplicate entry name")

	// ErrLineTooLong indicates a line longer than MaxLineLength.
	ErrLineTooLong = errors.Newf("line exceeds %d bytes", MaxLineLength)

	// ErrTooLarge indicates a manifest file larger than MaxSize.
	ErrTooLarge = errors.Newf("manifest exceeds %d bytes", MaxSize)
)

// ParseError reports the manifest line that could not be parsed.
type ParseError struct {
	// Path is the manifest file, empty when parsing raw lines.
	Path string
	// Line is the 1-based line number, 0 when the whole file is rejected.
	Line int
	// Text is the offending line as written.
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		if e.Path == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("%s: %v: %q", loc, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
