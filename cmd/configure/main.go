package main

import (
	"fmt"
	"os"

	"github.com/medtrack/medtrack/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "medtrack-configure",
		Short: "Administration tool for the MedTrack API",
		Long:  "CLI tool for managing users, API tokens and bulk medication imports",
	}

	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewImportCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
