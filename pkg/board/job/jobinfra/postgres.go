// Package jobinfra is the postgres persistence for job postings.
package jobinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhire/openhire/pkg/board/job"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, j job.Job) error {
	query := `
		INSERT INTO jobs (id, employer_id, category_id, title, slug, description, location,
		                  employment_type, salary_min, salary_max, status, deadline, created_at, updated_at)
		VALUES (:id, :employer_id, :category_id, :title, :slug, :description, :location,
		        :employment_type, :salary_min, :salary_max, :status, :deadline, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			employment_type = EXCLUDED.employment_type,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			status = EXCLUDED.status,
			deadline = EXCLUDED.deadline,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, j)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return job.ErrDuplicateSlug().WithDetail("slug", j.Slug)
		}
		return errx.Wrap(err, "failed to save job", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	var j job.Job
	err := r.db.GetContext(ctx, &j, `SELECT * FROM jobs WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrNotFound().WithDetail("job_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find job", errx.TypeInternal)
	}
	return &j, nil
}

func (r *PostgresRepository) ExistsSlug(ctx context.Context, employerID kernel.UserID, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE employer_id = $1 AND slug = $2)`,
		employerID.String(), slug)
	if err != nil {
		return false, errx.Wrap(err, "failed to check slug", errx.TypeInternal)
	}
	return exists, nil
}

// ListPublished builds the filtered public listing query. Text search is a
// simple ILIKE over title and description.
func (r *PostgresRepository) ListPublished(ctx context.Context, filters job.Filters, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	where := []string{"status = 'published'"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.CategoryID != "" {
		where = append(where, "category_id = "+arg(filters.CategoryID))
	}
	if filters.Location != "" {
		where = append(where, "location ILIKE "+arg("%"+filters.Location+"%"))
	}
	if filters.EmploymentType != "" {
		where = append(where, "employment_type = "+arg(filters.EmploymentType))
	}
	if filters.SalaryFloor != nil {
		where = append(where, "salary_max >= "+arg(*filters.SalaryFloor))
	}
	if filters.Search != "" {
		p := arg("%" + filters.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM jobs WHERE "+cond, args...); err != nil {
		return kernel.Paginated[job.Job]{}, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}

	query := fmt.Sprintf(
		"SELECT * FROM jobs WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s",
		cond, arg(opts.PageSize), arg(opts.Offset()))

	var jobs []job.Job
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return kernel.Paginated[job.Job]{}, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}
	return kernel.NewPaginated(jobs, opts.Page, opts.PageSize, total), nil
}

func (r *PostgresRepository) ListByEmployer(ctx context.Context, employerID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE employer_id = $1`, employerID.String())
	if err != nil {
		return kernel.Paginated[job.Job]{}, errx.Wrap(err, "failed to count employer jobs", errx.TypeInternal)
	}

	var jobs []job.Job
	err = r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		employerID.String(), opts.PageSize, opts.Offset())
	if err != nil {
		return kernel.Paginated[job.Job]{}, errx.Wrap(err, "failed to list employer jobs", errx.TypeInternal)
	}
	return kernel.NewPaginated(jobs, opts.Page, opts.PageSize, total), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id kernel.JobID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete job", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) CountApplications(ctx context.Context, id kernel.JobID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, id.String())
	if err != nil {
		return 0, errx.Wrap(err, "failed to count applications", errx.TypeInternal)
	}
	return count, nil
}
