// Package cmd holds the build information of the bkp binary.
package cmd

import "fmt"

// Set with -ldflags "-X github.com/thoreinstein/bkp/cmd.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildInfo is the build information in a printable form.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Info returns the build information of the running binary.
func Info() BuildInfo {
	return BuildInfo{Version: Version, Commit: Commit, Date: Date}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("bkp %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}
