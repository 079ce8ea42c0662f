// Package config loads the optional bkp settings file using Viper.
package config

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/paths"
)

// EnvPrefix is the prefix for environment overrides (BKP_LOG_FILE, ...).
const EnvPrefix = "BKP"

// Config represents the settings read from <config_dir>/config.yaml.
type Config struct {
	// ManifestFile is the manifest location, relative to the config directory
	// unless absolute.
	ManifestFile string `mapstructure:"manifest_file" yaml:"manifest_file"`
	// LogFile is the append-only run log, relative to the config directory
	// unless absolute.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
	// LogFormat is the record format of the log file: json or text.
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	// SweepAfterRun removes empty snapshot folders once a run completes.
	SweepAfterRun bool `mapstructure:"sweep_after_run" yaml:"sweep_after_run"`

	// Dir is the configuration directory the settings were loaded for.
	Dir string `mapstructure:"-" yaml:"-"`
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(paths.ConfigFileName, filepath.Ext(paths.ConfigFileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("manifest_file", paths.DefaultManifestName)
	v.SetDefault("log_file", paths.DefaultLogName)
	v.SetDefault("log_format", string(logging.FormatJSON))
	v.SetDefault("sweep_after_run", false)
	return v
}

// Load reads the settings for configDir.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, <configDir>/config.yaml is used when present and
// defaults otherwise.
func Load(configDir, path string) (*Config, error) {
	v := newViper(configDir)
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file: defaults apply.
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		case path != "" && errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	cfg.Dir = configDir
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}
	return &cfg, nil
}

// Default returns the settings used when no config file exists.
func Default(configDir string) *Config {
	return &Config{
		ManifestFile: paths.DefaultManifestName,
		LogFile:      paths.DefaultLogName,
		LogFormat:    string(logging.FormatJSON),
		Dir:          configDir,
	}
}

// ManifestPath returns the absolute manifest location.
func (c *Config) ManifestPath() string {
	return c.inDir(c.ManifestFile)
}

// LogPath returns the absolute log file location.
func (c *Config) LogPath() string {
	return c.inDir(c.LogFile)
}

func (c *Config) inDir(name string) string {
	name = paths.ExpandHome(name)
	if filepath.IsAbs(name) {
		return name
	}
	return paths.InConfigDir(c.Dir, name)
}
