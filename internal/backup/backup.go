package backup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/juju/clock"
	"github.com/spf13/afero"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/internal/paths"
	"github.com/thoreinstein/bkp/pkg/fileutil"
)

// Executor copies one manifest entry at a time.
type Executor struct {
	fs     afero.Fs
	clock  clock.Clock
	copier *fileutil.Copier

	mu   sync.Mutex
	last time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithFs sets the file system the executor copies on.
func WithFs(fsys afero.Fs) Option {
	return func(e *Executor) {
		if fsys != nil {
			e.fs = fsys
		}
	}
}

// WithClock sets the clock used for snapshot stamps.
func WithClock(clk clock.Clock) Option {
	return func(e *Executor) {
		if clk != nil {
			e.clock = clk
		}
	}
}

// WithCopier sets the copy primitive. By default a Copier on the executor's
// file system is used.
func WithCopier(c *fileutil.Copier) Option {
	return func(e *Executor) {
		e.copier = c
	}
}

// NewExecutor creates an Executor on the OS file system and wall clock
// unless options say otherwise.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		fs:    afero.NewOsFs(),
		clock: clock.WallClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.copier == nil {
		e.copier = fileutil.NewCopier(e.fs)
	}
	return e
}

// Fs returns the executor's file system.
func (e *Executor) Fs() afero.Fs {
	return e.fs
}

// Execute backs up a resolved entry.
//
// With Overwrite set the source is copied into the destination, leaving
// files that already exist there untouched. Otherwise the source is copied
// into a hidden staging folder under the destination which is renamed to
// <name>_<stamp> once the copy has succeeded; on failure the staging folder
// is removed again.
//
// Copy failures are *fileutil.CopyError; any other error is fatal for the run.
func (e *Executor) Execute(ctx context.Context, entry manifest.Entry) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := e.result(entry)
	logger := logging.FromContext(ctx).With(logging.KeyEntry, entry.Name)
	logger.Debug("copying", "strategy", res.Strategy, "source", res.Source, "destination", res.Destination)

	var err error
	if res.Strategy == StrategyOverwrite {
		err = e.overwrite(res)
	} else {
		err = e.snapshot(logger, res)
	}
	if err != nil {
		return res, err
	}

	res.Time = e.clock.Now()
	return res, nil
}

// Plan returns what Execute would do for entry without touching the file
// system. Snapshot targets use the current time and may differ from the
// folder a real run creates.
func (e *Executor) Plan(entry manifest.Entry) *Result {
	res := e.result(entry)
	res.DryRun = true
	res.Time = e.clock.Now()
	if res.Strategy == StrategySnapshot {
		res.Target = SnapshotPath(res.Destination, entry.Name, res.Time)
	}
	return res
}

func (e *Executor) result(entry manifest.Entry) *Result {
	dst := paths.ExpandHome(entry.Destination)
	return &Result{
		Entry:       entry,
		Strategy:    StrategyFor(entry),
		Source:      paths.ExpandHome(entry.Source),
		Destination: dst,
		Target:      dst,
	}
}

func (e *Executor) overwrite(res *Result) error {
	n, err := e.copier.CopyItems([]string{res.Source}, res.Destination, fileutil.CopyOptions{
		Overwrite: true,
		SkipExist: true,
	})
	res.Bytes = n
	return err
}

func (e *Executor) snapshot(logger *slog.Logger, res *Result) error {
	name := res.Entry.Name
	if !validName(name) {
		return fileutil.NewCopyError(name, errors.Wrapf(fileutil.ErrInvalidName, "entry name %q", name))
	}
	if res.Source == "" {
		return fileutil.NewCopyError(res.Source, errors.Wrap(afero.ErrFileNotFound, "empty source path"))
	}
	if _, err := e.fs.Stat(res.Source); err != nil {
		return fileutil.NewCopyError(res.Source, err)
	}

	if err := e.fs.MkdirAll(res.Destination, fileutil.DirPerm); err != nil {
		return fileutil.NewCopyError(res.Destination, err)
	}

	staging, err := afero.TempDir(e.fs, res.Destination, stagingPrefix(name))
	if err != nil {
		return fileutil.NewCopyError(res.Destination, err)
	}

	n, err := e.copier.CopyItems([]string{res.Source}, staging, fileutil.CopyOptions{})
	res.Bytes = n
	if err != nil {
		return e.discard(staging, err)
	}

	stamp, err := e.nextStamp(res.Destination, name)
	if err != nil {
		return e.discard(staging, err)
	}
	target := SnapshotPath(res.Destination, name, stamp)
	if err := e.fs.Rename(staging, target); err != nil {
		return e.discard(staging, errors.Wrapf(err, "renaming snapshot to %s", target))
	}

	logger.Debug("snapshot created", "target", target)
	res.Target = target
	return nil
}

// discard removes a staging folder after a failed copy and returns cause.
func (e *Executor) discard(staging string, cause error) error {
	if err := e.fs.RemoveAll(staging); err != nil {
		return errors.CombineErrors(cause, errors.Wrapf(err, "removing %s", staging))
	}
	return cause
}

// nextStamp returns a snapshot time for name that is later than every stamp
// handed out before and whose folder does not exist yet.
func (e *Executor) nextStamp(destination, name string) (time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.clock.Now().Truncate(stampResolution)
	if !t.After(e.last) {
		t = e.last.Add(stampResolution)
	}
	for {
		exists, err := afero.Exists(e.fs, SnapshotPath(destination, name, t))
		if err != nil {
			return time.Time{}, errors.Wrap(err, "checking snapshot folder")
		}
		if !exists {
			break
		}
		t = t.Add(stampResolution)
	}
	e.last = t
	return t, nil
}
