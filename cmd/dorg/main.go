// Package main is the entry point for the dorg CLI.
package main

import (
	"os"

	"github.com/runger/dorg/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
