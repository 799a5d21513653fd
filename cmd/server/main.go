package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coolify-admin",
	Short: "Admin panel for clients and subscriptions hosted on Coolify",
	// Running the binary without a subcommand starts the server.
	RunE:         runServe,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd, createUserCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
