package auth

import (
	"testing"
	"time"

	"github.com/openhire/openhire/pkg/kernel"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour, "openhire-test")

	userID := kernel.NewUserID("user-1")
	token, err := svc.GenerateAccessToken(userID, map[string]any{
		"email":  "a@example.com",
		"name":   "A",
		"role":   kernel.RoleEmployer,
		"scopes": kernel.ScopesFor(kernel.RoleEmployer),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %q", claims.UserID)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != kernel.RoleEmployer {
		t.Errorf("role = %q", claims.Role)
	}
	if len(claims.Scopes) == 0 {
		t.Error("scopes missing")
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("token already expired")
	}
}

func TestRefreshTokensAreUniquePerCall(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, "")
	userID := kernel.NewUserID("user-1")

	first, err := svc.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}
	second, err := svc.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if first == second {
		t.Error("refresh tokens minted back to back must differ")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuing := NewJWTService("secret-a", time.Minute, time.Hour, "")
	validating := NewJWTService("secret-b", time.Minute, time.Hour, "")

	token, err := issuing.GenerateAccessToken(kernel.NewUserID("u"), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := validating.ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour, "")

	token, err := svc.GenerateAccessToken(kernel.NewUserID("u"), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour, "")
	if _, err := svc.ValidateAccessToken("not-a-token"); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestRefreshTokenIsValid(t *testing.T) {
	token := RefreshToken{ExpiresAt: time.Now().Add(time.Hour)}
	if !token.IsValid() {
		t.Error("live token reported invalid")
	}

	token.IsRevoked = true
	if token.IsValid() {
		t.Error("revoked token reported valid")
	}

	token = RefreshToken{ExpiresAt: time.Now().Add(-time.Hour)}
	if token.IsValid() {
		t.Error("expired token reported valid")
	}
}
