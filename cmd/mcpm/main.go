// Package main is the entry point for the mcpm CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ReportError(os.Stderr, err))
	}
}
