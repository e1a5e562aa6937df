package authsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
)

type memoryUsers struct {
	byID map[kernel.UserID]user.User
}

func (r *memoryUsers) Save(_ context.Context, u user.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *memoryUsers) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	return kernel.Paginated[user.User]{}, nil
}

type memoryTokens struct {
	byToken map[string]auth.RefreshToken
}

func (r *memoryTokens) SaveRefreshToken(_ context.Context, t auth.RefreshToken) error {
	r.byToken[t.Token] = t
	return nil
}

func (r *memoryTokens) FindRefreshToken(_ context.Context, v string) (*auth.RefreshToken, error) {
	t, ok := r.byToken[v]
	if !ok {
		return nil, auth.ErrInvalidRefreshToken()
	}
	return &t, nil
}

func (r *memoryTokens) RevokeRefreshToken(_ context.Context, v string) error {
	if t, ok := r.byToken[v]; ok {
		t.IsRevoked = true
		r.byToken[v] = t
	}
	return nil
}

func (r *memoryTokens) RevokeAllUserTokens(_ context.Context, userID kernel.UserID) error {
	for v, t := range r.byToken {
		if t.UserID == userID {
			t.IsRevoked = true
			r.byToken[v] = t
		}
	}
	return nil
}

func (r *memoryTokens) CleanExpiredTokens(context.Context) error {
	for v, t := range r.byToken {
		if t.IsExpired() {
			delete(r.byToken, v)
		}
	}
	return nil
}

type noopAudit struct{}

func (noopAudit) LogLoginAttempt(context.Context, kernel.UserID, bool, string, string) {}
func (noopAudit) LogLogout(context.Context, kernel.UserID, string)                     {}
func (noopAudit) LogTokenRefresh(context.Context, kernel.UserID, string)               {}

func setup(t *testing.T) (*AuthService, *memoryUsers, *memoryTokens, kernel.UserID) {
	t.Helper()

	users := &memoryUsers{byID: make(map[kernel.UserID]user.User)}
	tokens := &memoryTokens{byToken: make(map[string]auth.RefreshToken)}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id := kernel.NewUserID("user-1")
	users.byID[id] = user.User{
		ID:           id,
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		FullName:     "Ada",
		Role:         kernel.RoleCandidate,
		IsActive:     true,
	}

	jwt := auth.NewJWTService("test-secret", time.Minute, time.Hour, "test")
	return NewAuthService(users, tokens, jwt, noopAudit{}), users, tokens, id
}

func TestLogin(t *testing.T) {
	svc, _, tokens, id := setup(t)

	pair, dto, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "Ada@Example.com",
		Password: "s3cret-pass",
	}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q", pair.TokenType)
	}
	if dto.ID != id {
		t.Errorf("dto id = %q", dto.ID)
	}

	stored, err := tokens.FindRefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token not persisted: %v", err)
	}
	if !stored.IsValid() {
		t.Error("persisted refresh token not valid")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, _, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "ada@example.com",
		Password: "nope",
	}, "", "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != auth.CodeInvalidCredentials.Code {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, _, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	}, "", "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != auth.CodeInvalidCredentials.Code {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, users, _, id := setup(t)

	u := users.byID[id]
	u.IsActive = false
	users.byID[id] = u

	_, _, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "ada@example.com",
		Password: "s3cret-pass",
	}, "", "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != user.CodeAccountDisabled.Code {
		t.Fatalf("expected ACCOUNT_DISABLED, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokens, _ := setup(t)

	pair, _, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "ada@example.com",
		Password: "s3cret-pass",
	}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: pair.RefreshToken}, "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh token not rotated")
	}

	old, _ := tokens.FindRefreshToken(context.Background(), pair.RefreshToken)
	if !old.IsRevoked {
		t.Error("old refresh token not revoked")
	}

	// A rotated-out token must not be exchangeable again.
	if _, err := svc.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: pair.RefreshToken}, ""); err == nil {
		t.Fatal("expected reuse of rotated token to fail")
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _, tokens, id := setup(t)

	tokens.byToken["stale"] = auth.RefreshToken{
		ID:        "rt-1",
		Token:     "stale",
		UserID:    id,
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := svc.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: "stale"}, "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != auth.CodeExpiredRefreshToken.Code {
		t.Fatalf("expected EXPIRED_REFRESH_TOKEN, got %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	svc, _, tokens, id := setup(t)

	tokens.byToken["stale"] = auth.RefreshToken{
		ID:        "rt-1",
		Token:     "stale",
		UserID:    id,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	tokens.byToken["live"] = auth.RefreshToken{
		ID:        "rt-2",
		Token:     "live",
		UserID:    id,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := svc.PurgeExpiredTokens(context.Background()); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, ok := tokens.byToken["stale"]; ok {
		t.Error("expired token survived the sweep")
	}
	if _, ok := tokens.byToken["live"]; !ok {
		t.Error("live token was swept")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, tokens, id := setup(t)

	pair, _, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "ada@example.com",
		Password: "s3cret-pass",
	}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), id, pair.RefreshToken, ""); err != nil {
		t.Fatalf("logout: %v", err)
	}
	stored, _ := tokens.FindRefreshToken(context.Background(), pair.RefreshToken)
	if !stored.IsRevoked {
		t.Error("refresh token still valid after logout")
	}
}
