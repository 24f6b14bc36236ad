// Package main is the entry point for the prreview binary.
package main

import (
	"os"

	"github.com/irahardianto/prreview/cmd/prreview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
