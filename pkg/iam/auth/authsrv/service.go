// Package authsrv implements password login and token lifecycle on top of
// the auth ports.
package authsrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
)

type AuthService struct {
	users  user.Repository
	tokens auth.TokenRepository
	jwt    *auth.JWTService
	audit  auth.AuditService
}

func NewAuthService(users user.Repository, tokens auth.TokenRepository, jwt *auth.JWTService, audit auth.AuditService) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt, audit: audit}
}

// Login verifies the credentials and issues a token pair. Failed attempts
// are audited without distinguishing unknown email from wrong password.
func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest, ip, userAgent string) (*auth.TokenPair, *user.DTO, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		s.audit.LogLoginAttempt(ctx, "", false, ip, userAgent)
		return nil, nil, auth.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.LogLoginAttempt(ctx, u.ID, false, ip, userAgent)
		return nil, nil, auth.ErrInvalidCredentials()
	}

	if !u.CanLogin() {
		s.audit.LogLoginAttempt(ctx, u.ID, false, ip, userAgent)
		return nil, nil, user.ErrAccountDisabled()
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	s.audit.LogLoginAttempt(ctx, u.ID, true, ip, userAgent)
	dto := u.ToDTO()
	return pair, &dto, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req auth.RefreshRequest, ip string) (*auth.TokenPair, error) {
	stored, err := s.tokens.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, auth.ErrInvalidRefreshToken()
	}
	if stored.IsRevoked {
		return nil, auth.ErrInvalidRefreshToken()
	}
	if stored.IsExpired() {
		return nil, auth.ErrExpiredRefreshToken()
	}

	u, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, auth.ErrInvalidRefreshToken()
	}
	if !u.CanLogin() {
		return nil, user.ErrAccountDisabled()
	}

	if err := s.tokens.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}

	s.audit.LogTokenRefresh(ctx, u.ID, ip)
	return pair, nil
}

// Logout revokes the presented refresh token. Revoking an unknown token is
// not an error.
func (s *AuthService) Logout(ctx context.Context, userID kernel.UserID, refreshToken, ip string) error {
	if refreshToken != "" {
		if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	s.audit.LogLogout(ctx, userID, ip)
	return nil
}

// RevokeAll invalidates every refresh token of a user. Used on account
// deactivation.
func (s *AuthService) RevokeAll(ctx context.Context, userID kernel.UserID) error {
	return s.tokens.RevokeAllUserTokens(ctx, userID)
}

// PurgeExpiredTokens deletes refresh tokens past their expiry. Run at
// server startup; expired tokens are also rejected on use, so the sweep
// only reclaims storage.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) error {
	return s.tokens.CleanExpiredTokens(ctx)
}

// Me returns the account behind an auth context.
func (s *AuthService) Me(ctx context.Context, userID kernel.UserID) (*user.DTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

func (s *AuthService) issuePair(ctx context.Context, u *user.User) (*auth.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, map[string]any{
		"email":  u.Email,
		"name":   u.FullName,
		"role":   u.Role,
		"scopes": kernel.ScopesFor(u.Role),
	})
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.tokens.SaveRefreshToken(ctx, auth.RefreshToken{
		ID:        uuid.NewString(),
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.jwt.RefreshTokenTTL()),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    now.Add(s.jwt.AccessTokenTTL()),
	}, nil
}
