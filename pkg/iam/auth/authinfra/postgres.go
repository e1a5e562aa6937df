// Package authinfra is the postgres persistence for refresh tokens plus the
// logx-backed audit sinks.
package authinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/iam/auth"
	"github.com/openhire/openhire/pkg/kernel"
)

type PostgresTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresTokenRepository(db *sqlx.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) SaveRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at, is_revoked)
		VALUES (:id, :token, :user_id, :expires_at, :created_at, :is_revoked)`

	_, err := r.db.NamedExecContext(ctx, query, token)
	if err != nil {
		return errx.Wrap(err, "failed to save refresh token", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresTokenRepository) FindRefreshToken(ctx context.Context, tokenValue string) (*auth.RefreshToken, error) {
	var token auth.RefreshToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM refresh_tokens WHERE token = $1`, tokenValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidRefreshToken()
		}
		return nil, errx.Wrap(err, "failed to find refresh token", errx.TypeInternal)
	}
	return &token, nil
}

func (r *PostgresTokenRepository) RevokeRefreshToken(ctx context.Context, tokenValue string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET is_revoked = TRUE WHERE token = $1`, tokenValue)
	if err != nil {
		return errx.Wrap(err, "failed to revoke refresh token", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresTokenRepository) RevokeAllUserTokens(ctx context.Context, userID kernel.UserID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET is_revoked = TRUE WHERE user_id = $1`, userID.String())
	if err != nil {
		return errx.Wrap(err, "failed to revoke user tokens", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresTokenRepository) CleanExpiredTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return errx.Wrap(err, "failed to clean expired tokens", errx.TypeInternal)
	}
	return nil
}
