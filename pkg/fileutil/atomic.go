// Package fileutil provides the file system primitives bkp is built on:
// the recursive copy used by backups, atomic writes for generated files,
// and bounded reads.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// AtomicWriteFile writes data to path through a temp file in the same
// directory followed by a rename, so an interrupted write never leaves a
// truncated file behind.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), ".bkp-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true

	return nil
}

// AtomicWriteYAML marshals v as YAML and writes it to path atomically.
func AtomicWriteYAML(fsys afero.Fs, path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	return AtomicWriteFile(fsys, path, data, perm)
}
