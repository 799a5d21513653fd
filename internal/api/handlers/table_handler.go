package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/coolify-admin/internal/service"
)

// TableHandler serves the database browser under /api/database.
type TableHandler struct {
	s service.TableService
}

func NewTableHandler(s service.TableService) *TableHandler {
	return &TableHandler{s: s}
}

func (h *TableHandler) ListTables(c *fiber.Ctx) error {
	tables, err := h.s.ListTables(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tables":  tables,
		"total":   len(tables),
	})
}

func (h *TableHandler) Schema(c *fiber.Ctx) error {
	table := c.Params("table")

	columns, err := h.s.Schema(c.Context(), table)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"table":   table,
		"columns": columns,
	})
}

func (h *TableHandler) Rows(c *fiber.Ctx) error {
	table := c.Params("table")

	rows, pagination, err := h.s.Rows(c.Context(), table, c.QueryInt("page", 1), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"table":      table,
		"data":       rows,
		"pagination": pagination,
	})
}

func (h *TableHandler) Insert(c *fiber.Ctx) error {
	var values map[string]any
	if err := c.BodyParser(&values); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	row, err := h.s.Insert(c.Context(), c.Params("table"), values)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    row,
	})
}

func (h *TableHandler) Update(c *fiber.Ctx) error {
	var values map[string]any
	if err := c.BodyParser(&values); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	row, err := h.s.Update(c.Context(), c.Params("table"), c.Params("id"), values)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    row,
	})
}

func (h *TableHandler) Delete(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), c.Params("table"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
