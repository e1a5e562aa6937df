// Package jobhttp exposes the job posting endpoints.
package jobhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/board/job"
	"github.com/openhire/openhire/pkg/board/job/jobsrv"
	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/iam"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/kernel"
	"github.com/openhire/openhire/pkg/ptrx"
)

type Handlers struct {
	service *jobsrv.JobService
}

func NewHandlers(service *jobsrv.JobService) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(app *fiber.App, middleware *auth.TokenMiddleware) {
	grp := app.Group("/api/v1/jobs")
	grp.Get("/", h.listPublished)

	// The employer's own listing must register before /:id.
	grp.Get("/mine", middleware.Authenticate(), middleware.RequireScope("jobs:write"), h.listMine)
	grp.Get("/:id", middleware.OptionalAuthenticate(), h.get)

	write := grp.Group("/", middleware.Authenticate(), middleware.RequireScope("jobs:write"))
	write.Post("/", h.create)
	write.Patch("/:id", h.update)
	write.Post("/:id/publish", h.publish)
	write.Post("/:id/close", h.close)
	write.Delete("/:id", h.delete)
}

func (h *Handlers) listPublished(c *fiber.Ctx) error {
	filters := job.Filters{
		CategoryID:     c.Query("category_id"),
		Location:       c.Query("location"),
		EmploymentType: c.Query("employment_type"),
		Search:         c.Query("q"),
	}
	if floor := c.QueryInt("salary_floor", -1); floor >= 0 {
		filters.SalaryFloor = ptrx.Int64(int64(floor))
	}

	page, err := h.service.ListPublished(c.Context(), filters, httpx.ParsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) listMine(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	page, err := h.service.ListByEmployer(c.Context(), authCtx.UserID, httpx.ParsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) get(c *fiber.Ctx) error {
	// Anonymous viewers see published jobs only; the optional auth context
	// widens visibility to own drafts.
	viewer, _ := auth.GetAuthContext(c)

	j, err := h.service.Get(c.Context(), kernel.NewJobID(c.Params("id")), viewer)
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) create(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req job.CreateRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	j, err := h.service.Create(c.Context(), authCtx.UserID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(j)
}

func (h *Handlers) update(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req job.UpdateRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	j, err := h.service.Update(c.Context(), kernel.NewJobID(c.Params("id")), authCtx, req)
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) publish(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	j, err := h.service.Publish(c.Context(), kernel.NewJobID(c.Params("id")), authCtx)
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) close(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	j, err := h.service.Close(c.Context(), kernel.NewJobID(c.Params("id")), authCtx)
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) delete(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if err := h.service.Delete(c.Context(), kernel.NewJobID(c.Params("id")), authCtx); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
