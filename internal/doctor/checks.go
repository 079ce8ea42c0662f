package doctor

import (
	"context"
	"io/fs"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/bkp/internal/backup"
	"github.com/thoreinstein/bkp/internal/config"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/internal/paths"
)

// Check categories.
const (
	CategoryConfig   = "config"
	CategoryManifest = "manifest"
	CategoryLog      = "log"
	CategoryEntry    = "entry"
)

// StandardChecks returns the checks for a bkp setup. cfgErr is the error
// config.Load returned, if any; cfg must then hold the defaults. Entry checks
// are only added when the manifest exists and parses.
func StandardChecks(fsys afero.Fs, cfg *config.Config, cfgErr error) []Check {
	checks := []Check{
		&ConfigDirCheck{fs: fsys, dir: cfg.Dir},
		&ConfigFileCheck{err: cfgErr},
		&LogFileCheck{fs: fsys, path: cfg.LogPath()},
	}

	mc := loadManifestCheck(fsys, cfg.ManifestPath())
	checks = append(checks, mc)
	if mc.manifest != nil {
		for _, e := range mc.manifest.Resolve(cfg.Dir).Entries() {
			checks = append(checks, &EntryCheck{fs: fsys, entry: e})
		}
	}
	return checks
}

// ConfigDirCheck verifies the configuration directory exists and is writable.
type ConfigDirCheck struct {
	fs  afero.Fs
	dir string
}

var _ Check = (*ConfigDirCheck)(nil)

func (c *ConfigDirCheck) Name() string     { return "config-dir" }
func (c *ConfigDirCheck) Category() string { return CategoryConfig }

func (c *ConfigDirCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{Details: map[string]any{"path": c.dir}}

	info, err := c.fs.Stat(c.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityError
		result.Message = "configuration directory does not exist"
		result.FixHint = "Run: bkp init"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = "cannot access configuration directory: " + err.Error()
		return result
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "configuration path is not a directory"
		result.FixHint = "Remove the file or set " + paths.ConfigDirEnv + " to another directory"
		return result
	}

	probe, err := afero.TempFile(c.fs, c.dir, ".bkp-doctor-*")
	if err != nil {
		result.Status = SeverityError
		result.Message = "configuration directory is not writable"
		result.FixHint = "Check the directory permissions"
		return result
	}
	_ = probe.Close()
	_ = c.fs.Remove(probe.Name())

	result.Status = SeverityPass
	result.Message = "configuration directory is writable"
	return result
}

// ConfigFileCheck reports whether config.yaml loaded.
type ConfigFileCheck struct {
	err error
}

var _ Check = (*ConfigFileCheck)(nil)

func (c *ConfigFileCheck) Name() string     { return "config-file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) *CheckResult {
	if c.err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: c.err.Error(),
			FixHint: "Fix " + paths.ConfigFileName + " or remove it to use the defaults",
		}
	}
	return &CheckResult{Status: SeverityPass, Message: "settings loaded"}
}

// LogFileCheck verifies the log file can be appended to.
type LogFileCheck struct {
	fs   afero.Fs
	path string
}

var _ Check = (*LogFileCheck)(nil)

func (c *LogFileCheck) Name() string     { return "log-file" }
func (c *LogFileCheck) Category() string { return CategoryLog }

func (c *LogFileCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{Details: map[string]any{"path": c.path}}

	exists, err := afero.Exists(c.fs, c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = "cannot access log file: " + err.Error()
		return result
	}
	if !exists {
		result.Status = SeverityInfo
		result.Message = "log file is created on the first run"
		return result
	}

	f, err := c.fs.OpenFile(c.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		result.Status = SeverityError
		result.Message = "log file is not writable"
		result.FixHint = "Check the permissions of " + c.path
		return result
	}
	_ = f.Close()

	result.Status = SeverityPass
	result.Message = "log file is writable"
	return result
}

// ManifestCheck reports whether the manifest exists and parses.
type ManifestCheck struct {
	path     string
	manifest *manifest.Manifest
	missing  bool
	err      error
}

var _ Check = (*ManifestCheck)(nil)

// loadManifestCheck reads the manifest without creating it.
func loadManifestCheck(fsys afero.Fs, path string) *ManifestCheck {
	c := &ManifestCheck{path: path}

	m, err := manifest.Read(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		c.missing = true
	} else {
		c.manifest, c.err = m, err
	}
	return c
}

func (c *ManifestCheck) Name() string     { return "manifest" }
func (c *ManifestCheck) Category() string { return CategoryManifest }

func (c *ManifestCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{Details: map[string]any{"path": c.path}}

	switch {
	case c.missing:
		result.Status = SeverityWarning
		result.Message = "manifest does not exist"
		result.FixHint = "Run: bkp init"
	case c.err != nil:
		result.Status = SeverityError
		result.Message = c.err.Error()
		var pe *manifest.ParseError
		if errors.As(c.err, &pe) {
			result.Details["line"] = pe.Line
			result.FixHint = "Use <name> = <source>, <destination>, <true|false>"
		}
	case c.manifest.Len() == 0:
		result.Status = SeverityInfo
		result.Message = "manifest has no entries"
		result.FixHint = "Edit " + c.path
	default:
		result.Status = SeverityPass
		result.Message = strconv.Itoa(c.manifest.Len()) + " entries"
		result.Details["entries"] = c.manifest.Names()
	}
	return result
}

// EntryCheck looks at the source and destination of one resolved entry.
type EntryCheck struct {
	fs    afero.Fs
	entry manifest.Entry
}

var _ Check = (*EntryCheck)(nil)

func (c *EntryCheck) Name() string     { return c.entry.Name }
func (c *EntryCheck) Category() string { return CategoryEntry }

func (c *EntryCheck) Run(_ context.Context) *CheckResult {
	source := paths.ExpandHome(c.entry.Source)
	destination := paths.ExpandHome(c.entry.Destination)
	strategy := backup.StrategyFor(c.entry)

	result := &CheckResult{Details: map[string]any{
		"source":      source,
		"destination": destination,
		"strategy":    strategy.String(),
	}}

	if source == "" {
		result.Status = SeverityWarning
		result.Message = "source is empty, the entry will be skipped"
		return result
	}
	if _, err := c.fs.Stat(source); err != nil {
		result.Status = SeverityWarning
		result.Message = "source is not accessible, the entry will be skipped: " + err.Error()
		return result
	}

	info, err := c.fs.Stat(destination)
	switch {
	case errors.Is(err, fs.ErrNotExist) && strategy == backup.StrategySnapshot:
		result.Status = SeverityInfo
		result.Message = "destination is created on the first run"
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityWarning
		result.Message = "destination does not exist, the entry will be skipped"
		result.FixHint = "Create " + destination
	case err != nil:
		result.Status = SeverityWarning
		result.Message = "destination is not accessible: " + err.Error()
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "destination is not a directory"
	default:
		result.Status = SeverityPass
		result.Message = "ready (" + strategy.String() + ")"
	}
	return result
}
