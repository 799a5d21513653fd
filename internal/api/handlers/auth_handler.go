package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
	"github.com/maheshrc27/coolify-admin/pkg/utils"
)

const stateCookie = "oauth-state"

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	user, err := h.s.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.setSession(c, user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		MaxAge:   -1,
	})
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if !h.s.GoogleEnabled() {
		return respondError(c, service.ErrGoogleDisabled)
	}

	state, err := utils.GenerateState()
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
	})

	return c.Redirect(h.s.GoogleAuthURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Cookies(stateCookie)
	if state == "" || c.Query("state") != state {
		return badRequest(c, "Invalid OAuth state")
	}
	c.ClearCookie(stateCookie)

	user, err := h.s.GoogleCallback(c.Context(), c.Query("code"))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.setSession(c, user); err != nil {
		return respondError(c, err)
	}

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) setSession(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(h.cfg.SecretKey, user.ID, user.Email, h.cfg.SessionTTL)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
	})
	return nil
}
