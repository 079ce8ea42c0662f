package commands

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/bkp/internal/errors"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration directory, manifest and log locations and the
settings read from config.yaml and BKP_* environment variables, in YAML format.`,
	Example: `  # Show configuration
  bkp config

  # Use another configuration directory
  BKP_CONFIG_DIR=/tmp/bkp bkp config

See Also: bkp init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigWithWriter(cmd.OutOrStdout())
	},
}

// effectiveConfig is the output of bkp config.
type effectiveConfig struct {
	ConfigDir     string `yaml:"config_dir"`
	ManifestFile  string `yaml:"manifest_file"`
	LogFile       string `yaml:"log_file"`
	LogFormat     string `yaml:"log_format"`
	SweepAfterRun bool   `yaml:"sweep_after_run"`
}

// runConfigWithWriter allows injecting a writer for testing.
func runConfigWithWriter(w io.Writer) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	out := effectiveConfig{
		ConfigDir:     env.configDir,
		ManifestFile:  env.cfg.ManifestPath(),
		LogFile:       env.cfg.LogPath(),
		LogFormat:     env.cfg.LogFormat,
		SweepAfterRun: env.cfg.SweepAfterRun,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(enc.Close(), "encoding config")
}
