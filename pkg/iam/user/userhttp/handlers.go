// Package userhttp exposes registration, profile and admin user management
// endpoints.
package userhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/iam"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/iam/auth/authsrv"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/iam/user/usersrv"
	"github.com/openhire/openhire/pkg/kernel"
)

type Handlers struct {
	service *usersrv.UserService
	auth    *authsrv.AuthService
}

func NewHandlers(service *usersrv.UserService, authService *authsrv.AuthService) *Handlers {
	return &Handlers{service: service, auth: authService}
}

// RegisterRoutes mounts registration plus the authenticated profile and
// admin endpoints.
func (h *Handlers) RegisterRoutes(app *fiber.App, middleware *auth.TokenMiddleware) {
	app.Post("/api/v1/users", h.register)

	grp := app.Group("/api/v1/users", middleware.Authenticate())
	grp.Get("/me", h.profile)
	grp.Patch("/me", h.updateProfile)
	grp.Put("/me/password", h.changePassword)

	admin := app.Group("/api/v1/admin/users", middleware.Authenticate(), middleware.RequireAdmin())
	admin.Get("/", h.list)
	admin.Delete("/:id", h.deactivate)
}

func (h *Handlers) register(c *fiber.Ctx) error {
	var req user.RegisterRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	dto, err := h.service.Register(c.Context(), req, c.IP())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto)
}

func (h *Handlers) profile(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	dto, err := h.service.GetByID(c.Context(), authCtx.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto)
}

func (h *Handlers) updateProfile(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req user.UpdateProfileRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	dto, err := h.service.UpdateProfile(c.Context(), authCtx.UserID, req)
	if err != nil {
		return err
	}
	return c.JSON(dto)
}

func (h *Handlers) changePassword(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req user.ChangePasswordRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Context(), authCtx.UserID, req, c.IP()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

func (h *Handlers) list(c *fiber.Ctx) error {
	page, err := h.service.List(c.Context(), httpx.ParsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) deactivate(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewUserID(c.Params("id"))
	if err := h.service.Deactivate(c.Context(), id, authCtx.UserID); err != nil {
		return err
	}
	// Kill every live session of the deactivated account.
	if err := h.auth.RevokeAll(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
