package fileutil

import (
	"fmt"
	"io/fs"

	"github.com/cockroachdb/errors"
)

// CopyKind classifies why a copy failed.
type CopyKind int

// Copy failure kinds.
const (
	// KindOther covers every failure not listed below.
	KindOther CopyKind = iota
	// KindNotFound means the source or the destination does not exist.
	KindNotFound
	// KindPermissionDenied means the file system refused access.
	KindPermissionDenied
	// KindAlreadyExists means the target exists and neither skipping nor
	// overwriting was allowed.
	KindAlreadyExists
	// KindInvalidName means a path has no usable final element.
	KindInvalidName
)

func (k CopyKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidName:
		return "invalid name"
	default:
		return "other"
	}
}

// ErrInvalidName is the cause recorded for KindInvalidName failures.
var ErrInvalidName = errors.New("invalid file name")

// CopyError is returned by the Copier for any failed item.
type CopyError struct {
	Kind CopyKind
	Path string
	Err  error
}

// NewCopyError wraps err for path and classifies it from the error chain.
// Errors that already carry a CopyError are returned as is.
func NewCopyError(path string, err error) *CopyError {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce
	}
	return &CopyError{Kind: classify(err), Path: path, Err: err}
}

func classify(err error) CopyKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, ErrInvalidName):
		return KindInvalidName
	default:
		return KindOther
	}
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Kind)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// KindOf reports the CopyKind of err, or KindOther if err carries no CopyError.
func KindOf(err error) CopyKind {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindOther
}
