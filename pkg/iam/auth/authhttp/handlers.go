// Package authhttp exposes the authentication endpoints.
package authhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/iam"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/iam/auth/authsrv"
)

type Handlers struct {
	service *authsrv.AuthService
}

func NewHandlers(service *authsrv.AuthService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts /auth/login, /auth/refresh, /auth/logout, /auth/me.
func (h *Handlers) RegisterRoutes(app *fiber.App, middleware *auth.TokenMiddleware) {
	grp := app.Group("/auth")
	grp.Post("/login", h.login)
	grp.Post("/refresh", h.refresh)
	grp.Post("/logout", middleware.Authenticate(), h.logout)
	grp.Get("/me", middleware.Authenticate(), h.me)
}

func (h *Handlers) login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	pair, usr, err := h.service.Login(c.Context(), req, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"tokens": pair,
		"user":   usr,
	})
}

func (h *Handlers) refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.service.Refresh(c.Context(), req, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

func (h *Handlers) logout(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	// The refresh token to revoke travels in the body; an empty body still
	// logs the event.
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.BodyParser(&req)

	if err := h.service.Logout(c.Context(), authCtx.UserID, req.RefreshToken, c.IP()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *Handlers) me(c *fiber.Ctx) error {
	authCtx, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	usr, err := h.service.Me(c.Context(), authCtx.UserID)
	if err != nil {
		return err
	}
	return c.JSON(usr)
}
