package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// CronSecret guards scheduler endpoints with a shared bearer secret. With no
// secret configured every request is rejected.
func CronSecret(secret string) fiber.Handler {
	expected := []byte("Bearer " + secret)

	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(fiber.HeaderAuthorization))
		if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			slog.Info("cron request rejected", "ip", c.IP(), "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
