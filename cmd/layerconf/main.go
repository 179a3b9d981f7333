// Package main provides the entry point for the layerconf CLI.
package main

import (
	"os"

	"github.com/randalmurphal/layerconf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
