// Package main is the entry point for the torgctl admin tool.
package main

import (
	"os"

	"github.com/viken-labs/ressurstorg/cmd/torgctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
