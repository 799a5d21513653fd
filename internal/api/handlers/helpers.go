package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	job "github.com/maheshrc27/coolify-admin/internal/jobs"
	"github.com/maheshrc27/coolify-admin/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("user_id").(string)
	id, _ := strconv.ParseInt(userID, 10, 64)
	return id
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// ErrorStatus maps service errors to HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAlreadyAttached),
		errors.Is(err, service.ErrDuplicateProject),
		errors.Is(err, service.ErrUnknownColumn):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUnknownTable),
		errors.Is(err, service.ErrGoogleDisabled):
		return fiber.StatusNotFound
	case errors.Is(err, job.ErrRunInProgress):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrDeployment):
		return fiber.StatusBadGateway
	case errors.Is(err, service.ErrArchiveDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unexpected errors are logged and
// hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := ErrorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
