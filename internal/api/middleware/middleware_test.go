package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(cfg).AuthMiddleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.Config{SecretKey: "secret", CookieName: "auth-token"}
	app := newProtectedApp(cfg)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := utils.GenerateToken("secret", 7, "ops@example.com", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	forged, err := utils.GenerateToken("other", 7, "ops@example.com", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: forged})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "auth-token=;")
}

func TestCronSecret(t *testing.T) {
	newApp := func(secret string) *fiber.App {
		app := fiber.New()
		app.Get("/cron", CronSecret(secret), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}

	cases := []struct {
		name   string
		secret string
		header string
		status int
	}{
		{"valid", "s3cret", "Bearer s3cret", http.StatusOK},
		{"wrong", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing", "s3cret", "", http.StatusUnauthorized},
		{"no scheme", "s3cret", "s3cret", http.StatusUnauthorized},
		{"unconfigured", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cron", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := newApp(tc.secret).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
