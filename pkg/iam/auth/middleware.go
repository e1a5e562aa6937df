package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openhire/openhire/pkg/iam"
	"github.com/openhire/openhire/pkg/kernel"
)

// TokenMiddleware authenticates requests with JWT access tokens.
type TokenMiddleware struct {
	tokenService TokenService
}

func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// Authenticate validates the bearer token (or access_token cookie) and
// stores the AuthContext in the request locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return iam.ErrUnauthorized()
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			return err
		}

		c.Locals("auth", &kernel.AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
			Role:   claims.Role,
			Scopes: claims.Scopes,
		})
		return c.Next()
	}
}

// OptionalAuthenticate sets the AuthContext when a valid token is present
// and lets anonymous requests through. For routes whose response widens
// with identity.
func (am *TokenMiddleware) OptionalAuthenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			return c.Next()
		}

		c.Locals("auth", &kernel.AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
			Role:   claims.Role,
			Scopes: claims.Scopes,
		})
		return c.Next()
	}
}

// RequireScope allows the request only when the auth context grants scope.
func (am *TokenMiddleware) RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		if !authCtx.HasScope(scope) {
			return iam.ErrAccessDenied().WithDetail("required_scope", scope)
		}
		return c.Next()
	}
}

// RequireAnyScope allows the request when the auth context grants at
// least one of the scopes.
func (am *TokenMiddleware) RequireAnyScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		for _, scope := range scopes {
			if authCtx.HasScope(scope) {
				return c.Next()
			}
		}
		return iam.ErrAccessDenied().WithDetail("required_scopes", strings.Join(scopes, " | "))
	}
}

// RequireAdmin allows only admin accounts.
func (am *TokenMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUnauthorized()
		}
		if !authCtx.IsAdmin() {
			return iam.ErrAccessDenied()
		}
		return c.Next()
	}
}

// GetAuthContext reads the authenticated context set by Authenticate.
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authCtx, ok := c.Locals("auth").(*kernel.AuthContext)
	if !ok || authCtx == nil || !authCtx.IsValid() {
		return nil, false
	}
	return authCtx, true
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies("access_token")
}
