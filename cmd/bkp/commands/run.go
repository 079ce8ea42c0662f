package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/internal/backup"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/logging"
	"github.com/thoreinstein/bkp/internal/manifest"
)

// runOptions holds the flags shared by bkp and bkp run.
type runOptions struct {
	selectEntries bool
	dryRun        bool
}

var runOpts runOptions

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the run flags on c. Both commands share runOpts.
func addRunFlags(c *cobra.Command) {
	c.Flags().BoolVarP(&runOpts.selectEntries, "select", "s", false, "pick the entries to run interactively")
	c.Flags().BoolVarP(&runOpts.dryRun, "dry-run", "n", false, "show what would be copied without copying")
}

var runCmd = &cobra.Command{
	Use:   "run [name...]",
	Short: "Run the backup",
	Long: `Run every manifest entry in name order, or only the named ones.

Entries whose source is missing or unreadable are skipped with a warning.
Any other failure stops the run and exits with status 2.`,
	Example: `  # Back up everything
  bkp run

  # Back up selected entries
  bkp run docs photos

  # Pick entries from a list
  bkp run --select

  # Show planned copies
  bkp run --dry-run

  See Also: bkp validate, bkp sweep`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(cmd, args)
	},
}

// pickEntries lets the user choose entries. Replaced in tests.
var pickEntries = func(entries []manifest.Entry) ([]string, error) {
	idx, err := fuzzyfinder.FindMulti(
		entries,
		func(i int) string {
			return entries[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("Name: %s\nSource: %s\nDestination: %s\nStrategy: %s",
				e.Name, e.Source, e.Destination, backup.StrategyFor(e))
		}),
	)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, entries[i].Name)
	}
	return names, nil
}

func runBackup(cmd *cobra.Command, names []string) error {
	return runBackupWithWriter(cmd.Context(), cmd.OutOrStdout(), names, runOpts)
}

func runBackupWithWriter(ctx context.Context, w io.Writer, names []string, opts runOptions) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	sink, err := logging.OpenSink(logging.SinkConfig{
		Path:       env.cfg.LogPath(),
		FileFormat: logging.Format(env.cfg.LogFormat),
		FileLevel:  slog.LevelInfo,
		Console:    logging.FromContext(ctx).Handler(),
	})
	if err != nil {
		return errors.NewSystemError(err, "Check permissions of "+env.cfg.LogPath())
	}
	defer sink.Close()
	logger := sink.Logger
	ctx = logging.NewContext(ctx, logger)

	m, created, err := env.loadManifest()
	if err != nil {
		logger.Error("reading manifest", "path", env.cfg.ManifestPath(), "error", err)
		return err
	}
	if created {
		logger.Info("created manifest template", "path", m.Path)
	}

	m, err = m.Select(names...)
	if err != nil {
		return errors.NewUserError(err, "Run: bkp validate")
	}

	if opts.selectEntries && m.Len() > 0 {
		picked, err := pickEntries(m.Entries())
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				fmt.Fprintln(w, "No entries selected.")
				return nil
			}
			return errors.Wrap(err, "interactive selection failed")
		}
		if len(picked) == 0 {
			fmt.Fprintln(w, "No entries selected.")
			return nil
		}
		if m, err = m.Select(picked...); err != nil {
			return errors.NewUserError(err, "")
		}
	}

	m = m.Resolve(env.configDir)

	exec := backup.NewExecutor(backup.WithFs(env.fs))
	runner := backup.NewRunner(exec, logger, backup.WithDryRun(opts.dryRun))
	summary, runErr := runner.Run(ctx, m)

	if runErr == nil && env.cfg.SweepAfterRun && !opts.dryRun {
		if _, err := backup.Sweep(ctx, env.fs, m, false); err != nil {
			logger.Warn("sweeping leftover folders", "error", err)
		}
	}

	if !quiet || runErr != nil {
		printSummary(w, summary, m.Path, sink.Path())
	}
	return runErr
}

func printSummary(w io.Writer, s backup.Summary, manifestPath, logPath string) {
	if s.Total == 0 {
		fmt.Fprintf(w, "Nothing to back up, edit file at %s\n", manifestPath)
		return
	}

	if s.Planned > 0 {
		fmt.Fprintf(w, "%d %s planned (dry run)\n", s.Planned, plural(s.Planned, "entry", "entries"))
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%s secured, %s skipped, %s failed (%s copied)\n",
		green(s.Succeeded), yellow(s.Skipped), red(s.Failed), humanize.Bytes(s.Bytes))
	if s.Skipped > 0 || s.Failed > 0 {
		fmt.Fprintln(w, gray("Details: "+logPath))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
