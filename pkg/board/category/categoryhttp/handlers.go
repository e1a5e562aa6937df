// Package categoryhttp exposes the category endpoints. Reads are public,
// writes are admin only.
package categoryhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/board/category"
	"github.com/openhire/openhire/pkg/board/category/categorysrv"
	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/kernel"
)

type Handlers struct {
	service *categorysrv.CategoryService
}

func NewHandlers(service *categorysrv.CategoryService) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(app *fiber.App, middleware *auth.TokenMiddleware) {
	grp := app.Group("/api/v1/categories")
	grp.Get("/", h.list)
	grp.Get("/slug/:slug", h.getBySlug)
	grp.Get("/:id", h.getByID)

	admin := grp.Group("/", middleware.Authenticate(), middleware.RequireAdmin())
	admin.Post("/", h.create)
	admin.Patch("/:id", h.update)
	admin.Delete("/:id", h.delete)
}

func (h *Handlers) list(c *fiber.Ctx) error {
	cats, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": cats})
}

func (h *Handlers) getByID(c *fiber.Ctx) error {
	cat, err := h.service.GetByID(c.Context(), kernel.NewCategoryID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handlers) getBySlug(c *fiber.Ctx) error {
	cat, err := h.service.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handlers) create(c *fiber.Ctx) error {
	var req category.CreateRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	cat, err := h.service.Create(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handlers) update(c *fiber.Ctx) error {
	var req category.UpdateRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	cat, err := h.service.Update(c.Context(), kernel.NewCategoryID(c.Params("id")), req)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handlers) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), kernel.NewCategoryID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
