// Package main is the entry point for the herovid application.
package main

import (
	"os"

	"herovid/cmd/herovid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
