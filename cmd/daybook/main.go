package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/daybook/core/cmd/daybook/commands"
)

// @title Daybook API
// @version 1.0
// @description Personal daily journal with recurring tasks and anchor carry-forward

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "daybook",
		Short: "Daybook API Server",
		Long:  `Daybook is a single-user daily journal backend: one log per calendar day, recurring task templates materialized ahead of time, and anchor tasks that follow you until done.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewRolloverCommand())
	rootCmd.AddCommand(commands.NewOwnerCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
