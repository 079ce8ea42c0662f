package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/thoreinstein/bkp/internal/config"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/internal/paths"
)

// Terminal colors. fatih/color disables them when stdout is not a terminal
// or NO_COLOR is set.
var (
	bold = color.New(color.Bold).SprintFunc()
	gray = color.New(color.FgHiBlack).SprintFunc()
)

// environment is what every command needs: the configuration directory, the
// settings loaded for it and the file system to work on.
type environment struct {
	configDir string
	cfg       *config.Config
	fs        afero.Fs
}

// loadEnvironment resolves and creates the configuration directory and
// loads config.yaml from it.
func loadEnvironment() (*environment, error) {
	dir, err := paths.EnsureConfigDir(configDirFlag)
	if err != nil {
		return nil, errors.NewConfigDirError(err, "Set "+paths.ConfigDirEnv+" or --config-dir to a writable directory")
	}

	cfg, err := config.Load(dir, "")
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	return &environment{configDir: dir, cfg: cfg, fs: afero.NewOsFs()}, nil
}

// loadManifest reads the manifest, writing the template when it is missing.
func (env *environment) loadManifest() (*manifest.Manifest, bool, error) {
	m, created, err := manifest.Load(env.fs, env.cfg.ManifestPath())
	if err != nil {
		var pe *manifest.ParseError
		if errors.As(err, &pe) {
			return nil, false, errors.NewManifestError(err, env.cfg.ManifestPath())
		}
		return nil, false, errors.NewSystemError(err, "")
	}
	return m, created, nil
}

// requireManifest reads an existing manifest without creating one.
func (env *environment) requireManifest() (*manifest.Manifest, error) {
	path := env.cfg.ManifestPath()
	exists, err := afero.Exists(env.fs, path)
	if err != nil {
		return nil, errors.NewSystemError(errors.Wrapf(err, "checking %s", path), "")
	}
	if !exists {
		return nil, errors.NewUserError(
			errors.Mark(errors.Newf("manifest %s does not exist", path), errors.ErrNotFound),
			"Run: bkp init")
	}
	m, _, err := env.loadManifest()
	return m, err
}
