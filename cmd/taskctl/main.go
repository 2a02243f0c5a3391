package main

import (
	"fmt"
	"os"

	"github.com/dokbae/voice-todo/cmd/taskctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Admin tool for the voice todo API",
		Long:  "CLI tool for running migrations and inspecting stored tasks",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
