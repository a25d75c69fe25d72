// Package main is the entry point for the pathmine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/quenault/pathmine/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
