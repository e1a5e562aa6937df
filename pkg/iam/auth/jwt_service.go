package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openhire/openhire/pkg/kernel"
)

// JWTService implements TokenService with HS256 signed tokens.
type JWTService struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	issuer          string
}

func NewJWTService(secretKey string, accessTokenTTL, refreshTokenTTL time.Duration, issuer string) *JWTService {
	if accessTokenTTL == 0 {
		accessTokenTTL = 15 * time.Minute
	}
	if refreshTokenTTL == 0 {
		refreshTokenTTL = 7 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "openhire"
	}

	return &JWTService{
		secretKey:       []byte(secretKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		issuer:          issuer,
	}
}

type jwtClaims struct {
	UserID kernel.UserID `json:"user_id"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Role   kernel.Role   `json:"role"`
	Scopes []string      `json:"scopes"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a short-lived access token. claims carries the
// optional identity fields: email, name, role, scopes.
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error) {
	now := time.Now()

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(kernel.Role)
	scopes, _ := claims["scopes"].([]string)
	if scopes == nil {
		scopes = []string{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			Audience:  []string{"openhire-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return tokenString, nil
}

// ValidateAccessToken parses and verifies an access token.
func (j *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}
	if !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "token is invalid")
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims type")
	}

	return &TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		Scopes:    claims.Scopes,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// GenerateRefreshToken signs a long-lived refresh token. The token is
// additionally persisted so it can be revoked.
func (j *JWTService) GenerateRefreshToken(userID kernel.UserID) (string, error) {
	now := time.Now()

	// JWT timestamps have second precision; the jti keeps two tokens
	// minted for the same user within one second distinct, which rotation
	// on refresh depends on.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    j.issuer,
		Subject:   userID.String(),
		Audience:  []string{"openhire-refresh"},
		ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTokenTTL)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return tokenString, nil
}

// RefreshTokenTTL exposes the configured refresh token lifetime.
func (j *JWTService) RefreshTokenTTL() time.Duration { return j.refreshTokenTTL }

// AccessTokenTTL exposes the configured access token lifetime.
func (j *JWTService) AccessTokenTTL() time.Duration { return j.accessTokenTTL }
