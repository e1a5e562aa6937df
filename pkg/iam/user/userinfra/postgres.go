// Package userinfra is the postgres persistence for user accounts.
package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	Headline     string    `db:"headline"`
	CompanyName  string    `db:"company_name"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toRow(u user.User) userRow {
	return userRow{
		ID:           u.ID.String(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         u.Role.String(),
		Headline:     u.Headline,
		CompanyName:  u.CompanyName,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           kernel.NewUserID(r.ID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Role:         kernel.Role(r.Role),
		Headline:     r.Headline,
		CompanyName:  r.CompanyName,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *PostgresRepository) Save(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, headline, company_name, is_active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :role, :headline, :company_name, :is_active, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			company_name = EXCLUDED.company_name,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, toRow(u))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return user.ErrEmailTaken().WithDetail("email", u.Email)
		}
		return errx.Wrap(err, "failed to save user", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	u := row.toDomain()
	return &u, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user by email", errx.TypeInternal)
	}
	u := row.toDomain()
	return &u, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, errx.Wrap(err, "failed to check email", errx.TypeInternal)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	opts = opts.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to count users", errx.TypeInternal)
	}

	var rows []userRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		opts.PageSize, opts.Offset())
	if err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to list users", errx.TypeInternal)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return kernel.NewPaginated(users, opts.Page, opts.PageSize, total), nil
}
