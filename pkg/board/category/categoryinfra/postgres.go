// Package categoryinfra is the postgres persistence for categories.
package categoryinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhire/openhire/pkg/board/category"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, c category.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES (:id, :name, :slug, :description, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return category.ErrDuplicate().WithDetail("slug", c.Slug)
		}
		return errx.Wrap(err, "failed to save category", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.CategoryID) (*category.Category, error) {
	var c category.Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound().WithDetail("category_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find category", errx.TypeInternal)
	}
	return &c, nil
}

func (r *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	var c category.Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound().WithDetail("slug", slug)
		}
		return nil, errx.Wrap(err, "failed to find category by slug", errx.TypeInternal)
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]category.Category, error) {
	var cats []category.Category
	err := r.db.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list categories", errx.TypeInternal)
	}
	return cats, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id kernel.CategoryID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id.String())
	if err != nil {
		var pqErr *pq.Error
		// 23503: a job still references the category.
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return category.ErrInUse()
		}
		return errx.Wrap(err, "failed to delete category", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) CountJobs(ctx context.Context, id kernel.CategoryID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM jobs WHERE category_id = $1`, id.String())
	if err != nil {
		return 0, errx.Wrap(err, "failed to count category jobs", errx.TypeInternal)
	}
	return count, nil
}
