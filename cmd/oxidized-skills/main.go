// Package main is the entry point for the oxidized-skills CLI.
package main

import (
	"os"

	"github.com/jbovet/oxidized-skills/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(2)
	}
}
