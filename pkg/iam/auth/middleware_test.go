package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

func scopedApp(scopes []string, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(errx.FromError(err).HTTPStatus)
		},
	})
	app.Get("/t",
		func(c *fiber.Ctx) error {
			if scopes != nil {
				c.Locals("auth", &kernel.AuthContext{
					UserID: kernel.NewUserID("user-1"),
					Role:   kernel.RoleCandidate,
					Scopes: scopes,
				})
			}
			return c.Next()
		},
		handler,
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireAnyScope(t *testing.T) {
	am := NewAuthMiddleware(nil)
	guard := am.RequireAnyScope("applications:withdraw", "applications:review")

	tests := []struct {
		name   string
		scopes []string
		want   int
	}{
		{"candidate scopes", kernel.ScopesFor(kernel.RoleCandidate), fiber.StatusOK},
		{"employer scopes", kernel.ScopesFor(kernel.RoleEmployer), fiber.StatusOK},
		{"admin wildcard", []string{"*"}, fiber.StatusOK},
		{"no matching scope", []string{"jobs:read"}, fiber.StatusForbidden},
		{"no auth context", nil, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := scopedApp(tt.scopes, guard)
			resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
