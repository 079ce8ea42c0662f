package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/internal/config"
	"github.com/thoreinstein/bkp/internal/doctor"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/paths"
)

var (
	doctorJSON bool
	doctorAll  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false, "show passed checks too")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the setup before a run",
	Long: `Check the configuration directory, config.yaml, the log file, the manifest
and the source and destination of every entry. Nothing is created or copied.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present: some entries would be skipped
  2 - Errors present: a run would fail`,
	Example: `  # Check the setup
  bkp doctor

  # Show every check
  bkp doctor --all

See Also: bkp validate, bkp run --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctorWithWriter(cmd.Context(), cmd.OutOrStdout(), doctorJSON, doctorAll)
	},
}

// errDoctorWarnings and errDoctorErrors carry the doctor exit codes.
var (
	errDoctorWarnings = errors.New("warnings found")
	errDoctorErrors   = errors.New("errors found")
)

// runDoctorWithWriter allows injecting a writer for testing.
func runDoctorWithWriter(ctx context.Context, w io.Writer, asJSON, showAll bool) error {
	dir, err := paths.ConfigDir(configDirFlag)
	if err != nil {
		return errors.NewConfigDirError(err, "")
	}

	cfg, cfgErr := config.Load(dir, "")
	if cfgErr != nil {
		cfg = config.Default(dir)
	}

	runner := doctor.NewRunner(nil)
	runner.AddCheck(doctor.StandardChecks(afero.NewOsFs(), cfg, cfgErr)...)
	report := runner.Run(ctx)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		outputDoctorText(w, report, showAll)
	}

	switch report.Summary.Worst() {
	case doctor.SeverityError:
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	case doctor.SeverityWarning:
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	default:
		return nil
	}
}

func outputDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
