package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/investdesk/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "investdesk",
		Short: "InvestDesk API Server",
		Long:  `InvestDesk serves the public investment catalog and the admin back office over a concurrent flat-file JSON store.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewBackupCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
