package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/api/handlers"
	"github.com/maheshrc27/coolify-admin/internal/api/middleware"
	"github.com/maheshrc27/coolify-admin/internal/metrics"
	"github.com/maheshrc27/coolify-admin/internal/service"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Clients      service.ClientService
	Subscription service.SubscriptionService
	Projects     service.ProjectService
	Tables       service.TableService
	Backups      service.BackupService
	DB           handlers.Pinger
	Reconciler   handlers.Reconciler
}

func NewApp(cfg config.Config, s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024, // 10 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			msg := err.Error()
			if code == fiber.StatusInternalServerError {
				slog.Error("unhandled error", "path", c.Path(), "error", err)
				msg = "Internal server error"
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return cfg.FrontendURL == "" || strings.EqualFold(origin, cfg.FrontendURL)
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	system := handlers.NewSystemHandler(s.DB, s.Reconciler)
	app.Get("/api/health", system.Health)
	app.Get("/api/cron/check-subscriptions", middleware.CronSecret(cfg.CronSecret), system.CheckSubscriptions)

	auth := handlers.NewAuthHandler(cfg, s.Auth)
	app.Post("/api/auth/login", auth.Login)
	app.Post("/api/auth/logout", auth.Logout)
	app.Get("/api/auth/google", auth.GoogleLogin)
	app.Get("/api/auth/google/callback", auth.GoogleCallback)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	api := app.Group("/api", authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(s.Users)
	api.Get("/auth/me", user.GetUserInfo)

	subscriptions := handlers.NewSubscriptionHandler(s.Subscription)
	api.Get("/dashboard/stats", subscriptions.DashboardStats)

	clients := handlers.NewClientHandler(s.Clients, s.Subscription)
	api.Get("/clients", clients.ListClients)
	api.Post("/clients", clients.CreateClient)
	api.Get("/clients/:id", clients.GetClient)
	api.Put("/clients/:id", clients.UpdateClient)
	api.Delete("/clients/:id", clients.DeleteClient)
	api.Post("/clients/:id/projects", clients.AttachProject)

	api.Put("/client-projects/:id", subscriptions.Update)
	api.Delete("/client-projects/:id", subscriptions.Delete)
	api.Post("/client-projects/:id/start", subscriptions.Start)
	api.Post("/client-projects/:id/stop", subscriptions.Stop)

	projects := handlers.NewProjectHandler(s.Projects)
	api.Get("/projects", projects.ListProjects)
	api.Post("/projects", projects.CreateProject)
	api.Post("/projects/sync", projects.SyncProjects)
	api.Get("/projects/:uuid/resources", projects.ListResources)
	api.Get("/projects/:uuid/resources/:resourceId", projects.ResourceDetails)

	tables := handlers.NewTableHandler(s.Tables)
	api.Get("/database/tables", tables.ListTables)
	api.Get("/database/:table/schema", tables.Schema)
	api.Get("/database/:table/data", tables.Rows)
	api.Post("/database/:table/data", tables.Insert)
	api.Put("/database/:table/data/:id", tables.Update)
	api.Delete("/database/:table/data/:id", tables.Delete)

	backups := handlers.NewBackupHandler(s.Backups)
	api.Get("/database-backup", backups.ListBackups)
	api.Post("/database-backup", backups.CreateBackup)
	api.Get("/database-backup/download", backups.DownloadBackup)
	api.Post("/database-backup/archive", backups.ArchiveBackup)

	return app
}
