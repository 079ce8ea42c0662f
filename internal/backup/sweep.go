package backup

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/internal/paths"
)

// Sweep removes leftovers of snapshot runs for every entry of the resolved
// manifest m: empty <name>_<stamp> folders and .<name>_partial-* staging
// folders. It returns the removed paths in sorted order. With dryRun set
// nothing is removed.
func Sweep(ctx context.Context, fsys afero.Fs, m *manifest.Manifest, dryRun bool) ([]string, error) {
	logger := logging.FromContext(ctx)

	var removed []string
	for _, entry := range m.Entries() {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		dst := paths.ExpandHome(entry.Destination)
		items, err := afero.ReadDir(fsys, dst)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, errors.Wrapf(err, "reading %s", dst)
		}

		for _, item := range items {
			if !item.IsDir() {
				continue
			}
			path := filepath.Join(dst, item.Name())

			switch {
			case isStagingOf(item.Name(), entry.Name):
			case isSnapshotOf(item.Name(), entry.Name):
				empty, err := afero.IsEmpty(fsys, path)
				if err != nil {
					return removed, errors.Wrapf(err, "inspecting %s", path)
				}
				if !empty {
					continue
				}
			default:
				continue
			}

			if slices.Contains(removed, path) {
				continue
			}
			if !dryRun {
				if err := fsys.RemoveAll(path); err != nil {
					return removed, errors.Wrapf(err, "removing %s", path)
				}
			}
			logger.Info("removed leftover folder", logging.KeyEntry, entry.Name, "path", path, "dry_run", dryRun)
			removed = append(removed, path)
		}
	}

	slices.Sort(removed)
	return removed, nil
}
