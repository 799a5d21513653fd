package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/api"
	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/maheshrc27/coolify-admin/internal/database"
	job "github.com/maheshrc27/coolify-admin/internal/jobs"
	"github.com/maheshrc27/coolify-admin/internal/queue"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the reconciler schedule and the archive worker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.LoadConfig()

	if cfg.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}

	if err := database.Migrate(cfg.PostgresURI); err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.PostgresURI)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	clientProjectRepo := repository.NewClientProjectRepository(db)
	tableRepo := repository.NewTableRepository(db)
	lockRepo := repository.NewLockRepository(db)

	coolifyClient := coolify.NewClient(cfg.Coolify)

	// archiver stays a nil interface when archiving is disabled.
	var archiver service.ArchiveEnqueuer
	var worker *asynq.Server
	if cfg.BackupArchiveEnabled {
		r2Service, err := service.NewR2Service(ctx, cfg.R2)
		if err != nil {
			closeDB(db)
			return err
		}

		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		archiver = queue.NewEnqueuer(client)

		worker = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 2,
		})
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeArchiveBackup, queue.NewQueue(coolifyClient, r2Service).HandleArchiveBackupTask)

		log.Println("Starting the Asynq server...")
		if err := worker.Start(mux); err != nil {
			closeDB(db)
			return fmt.Errorf("could not start Asynq server: %w", err)
		}
	}

	subscriptionJob := job.NewSubscriptionJob(clientProjectRepo, coolifyClient, lockRepo, cfg.ReconcilerConcurrency)

	c := cron.New()
	if err := c.AddFunc(cfg.CronSchedule, subscriptionJob.CheckSubscriptions); err != nil {
		closeDB(db)
		return fmt.Errorf("invalid CRON_SCHEDULE %q: %w", cfg.CronSchedule, err)
	}
	c.Start()

	app := api.NewApp(*cfg, api.Services{
		Auth:         service.NewAuthService(*cfg, userRepo),
		Users:        service.NewUserService(userRepo),
		Clients:      service.NewClientService(clientRepo, clientProjectRepo),
		Subscription: service.NewSubscriptionService(clientRepo, projectRepo, clientProjectRepo, coolifyClient),
		Projects:     service.NewProjectService(projectRepo, coolifyClient),
		Tables:       service.NewTableService(tableRepo, cfg.BrowserTables),
		Backups:      service.NewBackupService(coolifyClient, archiver),
		DB:           db,
		Reconciler:   subscriptionJob,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db, c, worker)
	return nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron, worker *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

// openDB loads the configuration and opens the pool for one-shot commands.
func openDB(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg := config.LoadConfig()
	db, err := database.Open(ctx, cfg.PostgresURI)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
