package main

import (
	"encoding/json"
	"fmt"
	"os"

	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/maheshrc27/coolify-admin/internal/database"
	job "github.com/maheshrc27/coolify-admin/internal/jobs"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return database.Migrate(config.LoadConfig().PostgresURI)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one subscription check and print the summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		j := job.NewSubscriptionJob(
			repository.NewClientProjectRepository(db),
			coolify.NewClient(cfg.Coolify),
			repository.NewLockRepository(db),
			cfg.ReconcilerConcurrency,
		)

		summary, err := j.Run(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an operator account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		_, db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		id, err := service.NewUserService(repository.NewUserRepository(db)).CreateUser(cmd.Context(), email, name, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Created user %d (%s)\n", id, email)
		return nil
	},
}

func init() {
	createUserCmd.Flags().String("email", "", "login email")
	createUserCmd.Flags().String("name", "", "display name")
	createUserCmd.Flags().String("password", "", "login password")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}
