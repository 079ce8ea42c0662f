package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/internal/backup"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/logging"
)

var sweepDryRun bool

func init() {
	sweepCmd.Flags().BoolVarP(&sweepDryRun, "dry-run", "n", false, "list folders without removing them")
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove empty snapshot folders",
	Long: `Remove leftovers of snapshot backups in every destination of the manifest:
empty <name>_<timestamp> folders and hidden .<name>_partial-* staging folders
of interrupted runs. Snapshots that hold data are never touched.`,
	Example: `  # See what would be removed
  bkp sweep --dry-run

  # Remove leftovers
  bkp sweep

See Also: bkp run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		m, err := env.requireManifest()
		if err != nil {
			return err
		}

		removed, err := backup.Sweep(cmd.Context(), env.fs, m.Resolve(env.configDir), sweepDryRun)
		if err != nil {
			logging.FromContext(cmd.Context()).Error("sweep failed", "error", err)
			return errors.NewSystemError(err, "")
		}
		printSwept(cmd.OutOrStdout(), removed, sweepDryRun)
		return nil
	},
}

func printSwept(w io.Writer, removed []string, dryRun bool) {
	if len(removed) == 0 {
		fmt.Fprintln(w, "Nothing to sweep.")
		return
	}
	verb := "Removed"
	if dryRun {
		verb = "Would remove"
	}
	for _, p := range removed {
		fmt.Fprintf(w, "%s %s\n", verb, p)
	}
}
