package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/coolify-admin/internal/service"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

type ProjectHandler struct {
	s service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{s: s}
}

func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.s.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req transfer.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	project, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) SyncProjects(c *fiber.Ctx) error {
	result, err := h.s.Sync(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"added":   result.Added,
		"updated": result.Updated,
	})
}

func (h *ProjectHandler) ListResources(c *fiber.Ctx) error {
	resources, err := h.s.Resources(c.Context(), c.Params("uuid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"resources": resources,
		"total":     len(resources),
	})
}

func (h *ProjectHandler) ResourceDetails(c *fiber.Ctx) error {
	raw, kind, err := h.s.ResourceDetails(c.Context(), c.Params("resourceId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"kind":     kind,
		"resource": raw,
	})
}
