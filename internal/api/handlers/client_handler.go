package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

type ClientHandler struct {
	s  service.ClientService
	ss service.SubscriptionService
}

func NewClientHandler(s service.ClientService, ss service.SubscriptionService) *ClientHandler {
	return &ClientHandler{s: s, ss: ss}
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.s.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clients)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	client, projects, err := h.s.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"client":   client,
		"projects": projects,
	})
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req transfer.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	client, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transfer.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	client, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *ClientHandler) AttachProject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transfer.AttachProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	cp, err := h.ss.Attach(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cp)
}
