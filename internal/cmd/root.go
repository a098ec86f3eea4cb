package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dorg",
	Short: "AI-assisted directory naming and filing",
	Long: `dorg - AI-assisted directory naming and filing
  - analyzes a directory's contents and proposes a descriptive camelCase name
  - files the renamed directory into your data home tree
  - records every naming attempt for later review`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
