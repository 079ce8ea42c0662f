package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/bkp/internal/backup"
	"github.com/thoreinstein/bkp/internal/errors"
	"github.com/thoreinstein/bkp/internal/manifest"
)

// Output formats of bkp validate.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", formatText, "output format: text, json, yaml, toml")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest and print its entries",
	Long: `Parse the manifest, resolve "default" destinations and print the entries
in the order a run would process them. Nothing is copied.

A malformed line is reported with its line number and exits with status 1.`,
	Example: `  # Check the manifest
  bkp validate

  # Export the resolved entries
  bkp validate --format json

See Also: bkp run --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runValidateWithWriter(cmd.OutOrStdout(), validateFormat)
	},
}

// manifestDocument is the exported form of a manifest.
type manifestDocument struct {
	Path    string           `json:"path" yaml:"path" toml:"path"`
	Entries []manifest.Entry `json:"entries" yaml:"entries" toml:"entry"`
}

// runValidateWithWriter allows injecting a writer for testing.
func runValidateWithWriter(w io.Writer, format string) error {
	switch format {
	case formatText, formatJSON, formatYAML, formatTOML:
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "Use one of: text, json, yaml, toml")
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	m, err := env.requireManifest()
	if err != nil {
		return err
	}
	m = m.Resolve(env.configDir)

	doc := manifestDocument{Path: m.Path, Entries: m.Entries()}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encoding JSON")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case formatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(doc), "encoding TOML")
	default:
		return outputEntriesTabular(w, m)
	}
}

func outputEntriesTabular(w io.Writer, m *manifest.Manifest) error {
	if m.Len() == 0 {
		fmt.Fprintf(w, "No entries, edit file at %s\n", m.Path)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, bold("NAME")+"\t"+bold("STRATEGY")+"\t"+bold("SOURCE")+"\t"+bold("DESTINATION"))
	for _, e := range m.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, backup.StrategyFor(e), e.Source, e.Destination)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "writing entries")
	}
	fmt.Fprintln(w, gray(fmt.Sprintf("%d %s in %s", m.Len(), plural(m.Len(), "entry", "entries"), m.Path)))
	return nil
}
