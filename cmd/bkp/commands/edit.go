package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/internal/editor"
	"github.com/thoreinstein/bkp/internal/errors"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the manifest in $EDITOR",
	Long: `Open the manifest in your editor and check it once the editor exits.

The editor is taken from $BKP_EDITOR, $EDITOR or $VISUAL, falling back to
nano or vi. A missing manifest is created from the template first.`,
	Example: `  # Edit the manifest
  bkp edit

  # Use a specific editor
  BKP_EDITOR="code --wait" bkp edit

See Also: bkp validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runEditWithWriter(cmd.Context(), cmd.OutOrStdout(), openEditor)
	},
}

// openEditor is replaced in tests.
var openEditor = editor.Open

// runEditWithWriter allows injecting a writer and an editor for testing.
func runEditWithWriter(ctx context.Context, w io.Writer, open func(context.Context, io.Writer, string) error) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	if _, _, err := env.loadManifest(); err != nil {
		// Parse errors are left for the editor to fix.
		var exitErr *errors.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
			return err
		}
	}

	path := env.cfg.ManifestPath()
	if err := open(ctx, w, path); err != nil {
		return errors.NewSystemError(err, "Set "+editor.EditorEnv+" or EDITOR to your editor")
	}

	m, _, err := env.loadManifest()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d %s in %s\n", m.Len(), plural(m.Len(), "entry", "entries"), path)
	return nil
}
