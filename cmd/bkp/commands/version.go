package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bkp/cmd"
	"github.com/thoreinstein/bkp/internal/errors"
)

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of bkp.`,
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runVersionWithWriter(c.OutOrStdout(), versionJSON)
	},
}

func runVersionWithWriter(w io.Writer, asJSON bool) error {
	info := cmd.Info()
	if asJSON {
		return errors.Wrap(json.NewEncoder(w).Encode(info), "encoding version")
	}
	fmt.Fprintf(w, "bkp version %s\n", info.Version)
	fmt.Fprintf(w, "  commit: %s\n", info.Commit)
	fmt.Fprintf(w, "  built:  %s\n", info.Date)
	return nil
}
