package fileutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// DirPerm is the permission used for directories created while copying.
const DirPerm = 0o755

// CopyOptions controls CopyItems.
//
// When both SkipExist and Overwrite are set, SkipExist wins: a target file
// that already exists is left untouched and only missing files are written.
type CopyOptions struct {
	// Overwrite replaces target files that already exist.
	Overwrite bool
	// SkipExist leaves target files that already exist untouched.
	SkipExist bool
	// CopyInside copies a directory to the target path itself when the target
	// does not exist yet, creating missing parents, instead of into
	// target/<name>.
	CopyInside bool
	// ContentOnly copies the contents of a directory, not the directory itself.
	ContentOnly bool
}

// Copier copies files and directory trees on an afero file system.
type Copier struct {
	fs afero.Fs
}

// NewCopier returns a Copier for fsys. A nil fsys means the OS file system.
func NewCopier(fsys afero.Fs) *Copier {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Copier{fs: fsys}
}

// CopyItems copies every path in from into the directory to and returns the
// number of bytes written. Files land at to/<name>; directories are copied
// recursively according to opts. Copying stops at the first failure, which
// is always a *CopyError.
func (c *Copier) CopyItems(from []string, to string, opts CopyOptions) (uint64, error) {
	var total uint64
	for _, item := range from {
		n, err := c.copyItem(item, to, opts)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c *Copier) copyItem(item, to string, opts CopyOptions) (uint64, error) {
	if item == "" {
		return 0, &CopyError{Kind: KindNotFound, Path: item, Err: errors.Wrap(fs.ErrNotExist, "empty source path")}
	}

	info, err := c.fs.Stat(item)
	if err != nil {
		return 0, NewCopyError(item, err)
	}

	name, err := baseName(item)
	if err != nil {
		return 0, NewCopyError(item, err)
	}

	if info.IsDir() {
		return c.copyDir(item, name, to, opts)
	}
	return c.copyFile(item, filepath.Join(to, name), info, opts)
}

// maxLinkHops bounds symlink resolution of a copied root.
const maxLinkHops = 40

// resolveRoot follows symlinks at path itself so a linked source is walked
// as the directory it points at. Links below the root are left to the walk.
func (c *Copier) resolveRoot(path string) (string, error) {
	lstater, okStat := c.fs.(afero.Lstater)
	reader, okRead := c.fs.(afero.LinkReader)
	if !okStat || !okRead {
		return path, nil
	}
	for range maxLinkHops {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", errors.Newf("%s: too many levels of symbolic links", path)
}

func (c *Copier) copyDir(from, name, to string, opts CopyOptions) (uint64, error) {
	resolved, err := c.resolveRoot(from)
	if err != nil {
		return 0, NewCopyError(from, err)
	}
	from = resolved

	root := to
	if !opts.ContentOnly && (!opts.CopyInside || c.exists(to)) {
		root = filepath.Join(to, name)
	}

	// A destination nested inside the source must not be copied into itself.
	var skip []string
	for _, p := range []string{to, root} {
		if rel, ok := relWithin(from, p); ok {
			skip = append(skip, rel)
		}
	}

	var total uint64
	err = afero.Walk(c.fs, from, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return NewCopyError(path, err)
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return NewCopyError(path, errors.Wrap(ErrInvalidName, err.Error()))
		}
		if info.IsDir() && slices.Contains(skip, rel) {
			return filepath.SkipDir
		}
		target := filepath.Join(root, rel)

		switch mode := info.Mode(); {
		case mode.IsDir():
			return c.ensureDir(target, opts.CopyInside)
		case mode.IsRegular():
			n, err := c.copyFile(path, target, info, opts)
			total += n
			return err
		case mode&fs.ModeSymlink != 0:
			return c.copySymlink(path, target, opts)
		default:
			// Sockets, devices and pipes are not copied.
			return nil
		}
	})
	return total, err
}

func (c *Copier) ensureDir(target string, parents bool) error {
	info, err := c.fs.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return &CopyError{Kind: KindAlreadyExists, Path: target, Err: errors.Wrapf(fs.ErrExist, "%s is not a directory", target)}
	case !errors.Is(err, fs.ErrNotExist):
		return NewCopyError(target, err)
	}

	if parents {
		err = c.fs.MkdirAll(target, DirPerm)
	} else {
		err = c.fs.Mkdir(target, DirPerm)
	}
	if err != nil {
		return NewCopyError(target, err)
	}
	return nil
}

func (c *Copier) copyFile(src, dst string, info fs.FileInfo, opts CopyOptions) (uint64, error) {
	if _, err := c.fs.Stat(dst); err == nil {
		if opts.SkipExist {
			return 0, nil
		}
		if !opts.Overwrite {
			return 0, &CopyError{Kind: KindAlreadyExists, Path: dst, Err: errors.Wrapf(fs.ErrExist, "%s", dst)}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, NewCopyError(dst, err)
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return 0, NewCopyError(src, err)
	}
	defer in.Close()

	out, err := c.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, NewCopyError(dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return uint64(n), NewCopyError(dst, errors.Wrapf(err, "copying %s", src))
	}
	if err := out.Close(); err != nil {
		return uint64(n), NewCopyError(dst, errors.Wrap(err, "closing destination file"))
	}

	// Keep the source timestamps; failure here does not invalidate the copy.
	_ = c.fs.Chtimes(dst, info.ModTime(), info.ModTime())

	return uint64(n), nil
}

func (c *Copier) copySymlink(src, dst string, opts CopyOptions) error {
	reader, okRead := c.fs.(afero.LinkReader)
	linker, okLink := c.fs.(afero.Linker)
	if !okRead || !okLink {
		// No symlink support: copy whatever the link points at.
		info, err := c.fs.Stat(src)
		if err != nil {
			return NewCopyError(src, err)
		}
		if info.IsDir() {
			return nil
		}
		_, err = c.copyFile(src, dst, info, opts)
		return err
	}

	if c.lexists(dst) {
		if opts.SkipExist {
			return nil
		}
		if !opts.Overwrite {
			return &CopyError{Kind: KindAlreadyExists, Path: dst, Err: errors.Wrapf(fs.ErrExist, "%s", dst)}
		}
		if err := c.fs.Remove(dst); err != nil {
			return NewCopyError(dst, err)
		}
	}

	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return NewCopyError(src, err)
	}
	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return NewCopyError(dst, err)
	}
	return nil
}

func (c *Copier) exists(path string) bool {
	_, err := c.fs.Stat(path)
	return err == nil
}

func (c *Copier) lexists(path string) bool {
	if l, ok := c.fs.(afero.Lstater); ok {
		_, _, err := l.LstatIfPossible(path)
		return err == nil
	}
	return c.exists(path)
}

// baseName returns the final element of path, rejecting paths that have none.
func baseName(path string) (string, error) {
	name := filepath.Base(filepath.Clean(path))
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", errors.Wrapf(ErrInvalidName, "%s has no usable name", path)
	}
	if vol := filepath.VolumeName(path); vol != "" && name == vol {
		return "", errors.Wrapf(ErrInvalidName, "%s has no usable name", path)
	}
	return name, nil
}

// relWithin returns path relative to dir when path lies strictly inside dir.
func relWithin(dir, path string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
