// Package main is the entry point for the bkp CLI.
package main

import (
	"os"

	"github.com/thoreinstein/bkp/cmd/bkp/commands"
	"github.com/thoreinstein/bkp/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
