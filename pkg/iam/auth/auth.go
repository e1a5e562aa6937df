// Package auth handles password login, JWT access tokens and persisted
// refresh tokens.
package auth

import (
	"net/http"
	"time"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// RefreshToken is a persisted, revocable refresh token. Access tokens are
// stateless JWTs; refresh tokens live in the database so logout and account
// deactivation can invalidate them.
type RefreshToken struct {
	ID        string        `db:"id" json:"id"`
	Token     string        `db:"token" json:"token"`
	UserID    kernel.UserID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time     `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	IsRevoked bool          `db:"is_revoked" json:"is_revoked"`
}

// IsExpired checks if the refresh token has expired.
func (r *RefreshToken) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsValid checks if the refresh token can still be exchanged.
func (r *RefreshToken) IsValid() bool {
	return !r.IsRevoked && !r.IsExpired()
}

// TokenClaims is the decoded content of an access token.
type TokenClaims struct {
	UserID    kernel.UserID `json:"user_id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      kernel.Role   `json:"role"`
	Scopes    []string      `json:"scopes"`
	IssuedAt  time.Time     `json:"iat"`
	ExpiresAt time.Time     `json:"exp"`
}

// TokenPair is the login and refresh response body.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeInvalidCredentials    = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid email or password")
	CodeInvalidRefreshToken   = ErrRegistry.Register("INVALID_REFRESH_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid refresh token")
	CodeExpiredRefreshToken   = ErrRegistry.Register("EXPIRED_REFRESH_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Expired refresh token")
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")
)

func ErrInvalidCredentials() *errx.Error    { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrInvalidRefreshToken() *errx.Error   { return ErrRegistry.New(CodeInvalidRefreshToken) }
func ErrExpiredRefreshToken() *errx.Error   { return ErrRegistry.New(CodeExpiredRefreshToken) }
func ErrTokenGenerationFailed() *errx.Error { return ErrRegistry.New(CodeTokenGenerationFailed) }
func ErrTokenValidationFailed() *errx.Error { return ErrRegistry.New(CodeTokenValidationFailed) }
