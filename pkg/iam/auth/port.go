package auth

import (
	"context"

	"github.com/openhire/openhire/pkg/kernel"
)

// TokenRepository is the persistence contract for refresh tokens.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token RefreshToken) error
	FindRefreshToken(ctx context.Context, tokenValue string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenValue string) error
	RevokeAllUserTokens(ctx context.Context, userID kernel.UserID) error
	CleanExpiredTokens(ctx context.Context) error
}

// TokenService signs and validates JWT tokens.
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	GenerateRefreshToken(userID kernel.UserID) (string, error)
}

// AuditService records authentication events.
type AuditService interface {
	LogLoginAttempt(ctx context.Context, userID kernel.UserID, success bool, ip string, userAgent string)
	LogLogout(ctx context.Context, userID kernel.UserID, ip string)
	LogTokenRefresh(ctx context.Context, userID kernel.UserID, ip string)
}
