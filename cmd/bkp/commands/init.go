package commands

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/internal/config"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/manifest"
	"github.com/thoreinstein/bkp/internal/paths"
	"github.com/thoreinstein/bkp/pkg/fileutil"
)

// configFilePerm is the permission of a config.yaml written by init.
const configFilePerm = 0o600

var initWriteConfig bool

func init() {
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "also write config.yaml with the default settings")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the manifest template",
	Long: `Create the configuration directory and a commented manifest template.

Existing files are never overwritten.`,
	Example: `  # Create the manifest
  bkp init

  # Also write config.yaml with the defaults
  bkp init --write-config

  See Also: bkp config, bkp validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInitWithWriter(cmd.OutOrStdout(), initWriteConfig)
	},
}

// runInitWithWriter allows injecting a writer for testing.
func runInitWithWriter(w io.Writer, writeConfig bool) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	path := env.cfg.ManifestPath()
	created, err := writeIfMissing(env.fs, path, func() error {
		return manifest.WriteTemplate(env.fs, path)
	})
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	report(w, created, "manifest", path)

	if !writeConfig {
		return nil
	}

	cfgPath := paths.InConfigDir(env.configDir, paths.ConfigFileName)
	created, err = writeIfMissing(env.fs, cfgPath, func() error {
		return fileutil.AtomicWriteYAML(env.fs, cfgPath, config.Default(env.configDir), configFilePerm)
	})
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	report(w, created, "config", cfgPath)
	return nil
}

func writeIfMissing(fsys afero.Fs, path string, write func() error) (bool, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return false, errors.Wrapf(err, "checking %s", path)
	}
	if exists {
		return false, nil
	}
	if err := write(); err != nil {
		return false, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}

func report(w io.Writer, created bool, what, path string) {
	if created {
		fmt.Fprintf(w, "Created %s: %s\n", what, path)
		return
	}
	fmt.Fprintf(w, "Existing %s kept: %s\n", what, path)
}
