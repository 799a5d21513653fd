package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

// SubscriptionHandler serves /api/client-projects.
type SubscriptionHandler struct {
	s service.SubscriptionService
}

func NewSubscriptionHandler(s service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{s: s}
}

func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transfer.UpdateClientProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	cp, err := h.s.Reschedule(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cp)
}

func (h *SubscriptionHandler) Start(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	cp, err := h.s.Start(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cp)
}

func (h *SubscriptionHandler) Stop(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	cp, err := h.s.Stop(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cp)
}

func (h *SubscriptionHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *SubscriptionHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.s.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
