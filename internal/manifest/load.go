package manifest

import (
	"bytes"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/bkp/pkg/fileutil"
)

// MaxSize is the largest manifest Load will read.
const MaxSize = 1 << 20

// TemplatePerm is the permission of a freshly written manifest.
const TemplatePerm = 0o644

// Template is written when no manifest exists yet. It contains only
// comments, so it parses to zero entries.
const Template = `# bkp manifest
#
# Usage:
#   <name> = <source>, <destination>, <overwrite>
#
#   name         identifies the entry in the log and prefixes snapshot folders
#   source       file or directory to back up (~ expands to your home)
#   destination  directory that receives the copy, or "default" for the
#                folder this file lives in
#   overwrite    true:  copy into destination; files already there are kept
#                false: copy into a new <name>_<timestamp> folder every run
#
# Lines starting with # or // are ignored.
#
# Examples:
# documents = ~/Documents, default, false
// photos = ~/Pictures, /mnt/backup, true
`

// Load reads and parses the manifest at path. When the file does not exist
// it is created from Template first and created is true; the returned
// manifest is then empty.
func Load(fsys afero.Fs, path string) (m *Manifest, created bool, err error) {
	if _, err := fsys.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := WriteTemplate(fsys, path); err != nil {
			return nil, false, err
		}
		created = true
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "checking manifest %s", path)
	}

	m, err = Read(fsys, path)
	if err != nil {
		return nil, created, err
	}
	return m, created, nil
}

// Read reads and parses an existing manifest without creating it. A file
// over MaxSize is a *ParseError like any other invalid manifest.
func Read(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := fileutil.ReadFileWithLimit(fsys, path, MaxSize)
	if errors.Is(err, fileutil.ErrFileTooLarge) {
		return nil, &ParseError{Path: path, Err: ErrTooLarge}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return ParseReader(bytes.NewReader(data), path)
}

// WriteTemplate writes Template to path, replacing nothing: an existing
// file is left alone.
func WriteTemplate(fsys afero.Fs, path string) error {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return errors.Wrapf(err, "checking manifest %s", path)
	}
	if exists {
		return nil
	}
	if err := fileutil.AtomicWriteFile(fsys, path, []byte(Template), TemplatePerm); err != nil {
		return errors.Wrapf(err, "writing manifest template %s", path)
	}
	return nil
}
