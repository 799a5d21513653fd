package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

type BackupHandler struct {
	s service.BackupService
}

func NewBackupHandler(s service.BackupService) *BackupHandler {
	return &BackupHandler{s: s}
}

func (h *BackupHandler) ListBackups(c *fiber.Ctx) error {
	backups, total, err := h.s.List(c.Context(), c.Query("database"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"backups": backups,
		"total":   total,
	})
}

func (h *BackupHandler) CreateBackup(c *fiber.Ctx) error {
	var req transfer.BackupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	if err := h.s.Create(c.Context(), req.DatabaseUUID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Backup requested",
	})
}

func (h *BackupHandler) DownloadBackup(c *fiber.Ctx) error {
	filename := c.Query("filename")

	body, err := h.s.Download(c.Context(), c.Query("database"), filename)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/gzip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.SendStream(body)
}

func (h *BackupHandler) ArchiveBackup(c *fiber.Ctx) error {
	var req transfer.ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	taskID, err := h.s.Archive(c.Context(), req.DatabaseUUID, req.Filename)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"taskId":  taskID,
	})
}
