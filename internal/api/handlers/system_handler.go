package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	job "github.com/maheshrc27/coolify-admin/internal/jobs"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Reconciler interface {
	Run(ctx context.Context) (*job.RunSummary, error)
}

// SystemHandler serves the health check and the scheduler trigger.
type SystemHandler struct {
	db         Pinger
	reconciler Reconciler
}

func NewSystemHandler(db Pinger, reconciler Reconciler) *SystemHandler {
	return &SystemHandler{db: db, reconciler: reconciler}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status, database, code := "ok", "connected", fiber.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		status, database, code = "error", "disconnected", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database":  database,
	})
}

func (h *SystemHandler) CheckSubscriptions(c *fiber.Ctx) error {
	summary, err := h.reconciler.Run(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
