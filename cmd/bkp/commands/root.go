// Package commands implements the CLI commands for bkp.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/cmd"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/logging"
)

// DebugEnv raises console verbosity when no -v flag is given.
const DebugEnv = "BKP_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the console format selected with --log-format.
var logFormat string

// configDirFlag holds the value of the --config-dir flag.
var configDirFlag string

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"console log format: text, json")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"configuration directory (default: $BKP_CONFIG_DIR or the XDG config home)")

	addRunFlags(rootCmd)

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("bkp version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "bkp",
	Short: "Back up folders listed in a manifest",
	Long: `bkp copies the sources listed in its manifest to their destinations.

Each manifest line has the form

  <name> = <source>, <destination>, <overwrite>

A destination of "default" means the configuration directory. With overwrite
set to true the source is copied into the destination and existing files are
kept; with false every run creates a new <name>_<timestamp> snapshot folder.

Without a subcommand bkp runs every entry, same as 'bkp run'.`,
	Example: `  # Back up everything
  bkp

  # Back up two entries only
  bkp run docs photos

  # Show where the manifest and log live
  bkp config

  See Also: bkp init, bkp validate, bkp sweep`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return setupLogging(cmd) },
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackup(cmd, nil)
	},
}

// setupLogging configures the console logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(DebugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format, ok := logging.ParseFormat(logFormat)
	if !ok {
		return errors.NewUserError(errors.Newf("invalid log format %q", logFormat), "Use --log-format text or --log-format json")
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// PrintError writes err and its suggestion, if any, to w.
func PrintError(w io.Writer, err error) {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		}
		if hint := exitErr.Hint(); hint != "" {
			fmt.Fprintf(w, "%s\n", hint)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// Execute runs the root command. An interrupt stops the run before the next
// entry.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return errors.Wrap(rootCmd.ExecuteContext(ctx), "executing root command")
}
