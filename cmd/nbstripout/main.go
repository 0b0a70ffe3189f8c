// Package main is the entry point for the nbstripout CLI.
package main

import (
	"os"

	"github.com/arobrien/nbstripout/cmd/nbstripout/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
