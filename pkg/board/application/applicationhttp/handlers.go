// Package applicationhttp exposes the application endpoints.
package applicationhttp

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/board/application"
	"github.com/openhire/openhire/pkg/board/application/applicationsrv"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/iam"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/kernel"
)

type Handlers struct {
	service *applicationsrv.ApplicationService

	// downloadExpiry bounds the presigned resume link lifetime.
	downloadExpiry time.Duration
}

func NewHandlers(service *applicationsrv.ApplicationService) *Handlers {
	return &Handlers{service: service, downloadExpiry: 15 * time.Minute}
}

func (h *Handlers) RegisterRoutes(app *fiber.App, middleware *auth.TokenMiddleware) {
	grp := app.Group("/api/v1/applications", middleware.Authenticate())
	grp.Post("/", middleware.RequireScope("applications:apply"), h.apply)
	grp.Get("/mine", h.listMine)
	grp.Get("/:id", h.get)
	grp.Get("/:id/events", h.events)
	grp.Get("/:id/resume", h.resume)
	grp.Post("/:id/transition", middleware.RequireAnyScope("applications:withdraw", "applications:review"), h.transition)

	jobs := app.Group("/api/v1/jobs/:job_id/applications", middleware.Authenticate(), middleware.RequireScope("applications:review"))
	jobs.Get("/", h.listForJob)
	jobs.Post("/bulk", h.bulk)
}

// apply accepts multipart (job_id, cover_letter fields + optional resume
// file part) or plain JSON without a resume.
func (h *Handlers) apply(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req application.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.ErrInvalidBody().WithDetail("error", err.Error())
	}
	if err := httpx.ValidateStruct(&req); err != nil {
		return err
	}

	var upload *applicationsrv.ResumeUpload
	if file, err := c.FormFile("resume"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return errx.Wrap(err, "failed to open resume upload", errx.TypeInternal)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return errx.Wrap(err, "failed to read resume upload", errx.TypeInternal)
		}
		upload = &applicationsrv.ResumeUpload{Filename: file.Filename, Data: data}
	}

	a, err := h.service.Apply(c.Context(), authCtx, req, upload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handlers) get(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	a, err := h.service.Get(c.Context(), kernel.NewApplicationID(c.Params("id")), authCtx)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handlers) listMine(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	page, err := h.service.ListMine(c.Context(), authCtx, httpx.ParsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) events(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	events, err := h.service.Events(c.Context(), kernel.NewApplicationID(c.Params("id")), authCtx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": events})
}

// resume hands out a presigned download link when the storage provider
// supports one, falling back to streaming the bytes.
func (h *Handlers) resume(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}
	id := kernel.NewApplicationID(c.Params("id"))

	url, err := h.service.ResumeDownloadURL(c.Context(), id, authCtx, h.downloadExpiry)
	if err == nil {
		return c.JSON(fiber.Map{"url": url, "expires_in": h.downloadExpiry.Seconds()})
	}

	var xerr *errx.Error
	if errx.As(err, &xerr) && xerr.Type != errx.TypeInternal {
		return err
	}

	data, a, err := h.service.ResumeContent(c.Context(), id, authCtx)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, a.ResumeContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+a.ResumeFilename+`"`)
	return c.Send(data)
}

func (h *Handlers) transition(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req application.TransitionRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	a, err := h.service.Transition(c.Context(), kernel.NewApplicationID(c.Params("id")), authCtx, req)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handlers) listForJob(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	page, err := h.service.ListForJob(c.Context(),
		kernel.NewJobID(c.Params("job_id")), authCtx,
		application.Status(c.Query("status")), httpx.ParsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) bulk(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req application.BulkTransitionRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	report, err := h.service.BulkTransition(c.Context(), kernel.NewJobID(c.Params("job_id")), authCtx, req)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
