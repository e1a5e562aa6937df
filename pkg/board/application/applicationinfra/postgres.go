// Package applicationinfra is the postgres persistence for applications and
// their event trail.
package applicationinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhire/openhire/pkg/board/application"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, a application.Application) error {
	query := `
		INSERT INTO applications (id, job_id, candidate_id, cover_letter, status,
		                          resume_key, resume_filename, resume_size, resume_content_type, resume_sha256,
		                          created_at, updated_at)
		VALUES (:id, :job_id, :candidate_id, :cover_letter, :status,
		        :resume_key, :resume_filename, :resume_size, :resume_content_type, :resume_sha256,
		        :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		var pqErr *pq.Error
		// The (job_id, candidate_id) unique index backstops the service
		// duplicate check.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return application.ErrDuplicate()
		}
		return errx.Wrap(err, "failed to save application", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	var a application.Application
	err := r.db.GetContext(ctx, &a, `SELECT * FROM applications WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, application.ErrNotFound().WithDetail("application_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find application", errx.TypeInternal)
	}
	return &a, nil
}

func (r *PostgresRepository) ExistsForJobAndCandidate(ctx context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND candidate_id = $2)`,
		jobID.String(), candidateID.String())
	if err != nil {
		return false, errx.Wrap(err, "failed to check application", errx.TypeInternal)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByCandidate(ctx context.Context, candidateID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications WHERE candidate_id = $1`, candidateID.String())
	if err != nil {
		return kernel.Paginated[application.Application]{}, errx.Wrap(err, "failed to count applications", errx.TypeInternal)
	}

	var apps []application.Application
	err = r.db.SelectContext(ctx, &apps,
		`SELECT * FROM applications WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		candidateID.String(), opts.PageSize, opts.Offset())
	if err != nil {
		return kernel.Paginated[application.Application]{}, errx.Wrap(err, "failed to list applications", errx.TypeInternal)
	}
	return kernel.NewPaginated(apps, opts.Page, opts.PageSize, total), nil
}

func (r *PostgresRepository) ListByJob(ctx context.Context, jobID kernel.JobID, status application.Status, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	where := `job_id = $1`
	args := []any{jobID.String()}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, string(status))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications WHERE `+where, args...); err != nil {
		return kernel.Paginated[application.Application]{}, errx.Wrap(err, "failed to count job applications", errx.TypeInternal)
	}

	query := fmt.Sprintf(`SELECT * FROM applications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, opts.PageSize, opts.Offset())

	var apps []application.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return kernel.Paginated[application.Application]{}, errx.Wrap(err, "failed to list job applications", errx.TypeInternal)
	}
	return kernel.NewPaginated(apps, opts.Page, opts.PageSize, total), nil
}

// PostgresEventRepository stores the transition audit trail.
type PostgresEventRepository struct {
	db *sqlx.DB
}

func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Append(ctx context.Context, e application.Event) error {
	query := `
		INSERT INTO application_events (id, application_id, from_status, to_status, actor_id, note, created_at)
		VALUES (:id, :application_id, :from_status, :to_status, :actor_id, :note, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return errx.Wrap(err, "failed to append application event", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresEventRepository) ListByApplication(ctx context.Context, id kernel.ApplicationID) ([]application.Event, error) {
	var events []application.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT * FROM application_events WHERE application_id = $1 ORDER BY created_at ASC`,
		id.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list application events", errx.TypeInternal)
	}
	return events, nil
}
