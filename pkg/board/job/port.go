package job

import (
	"context"

	"github.com/openhire/openhire/pkg/kernel"
)

// Repository is the persistence contract for job postings.
type Repository interface {
	Save(ctx context.Context, j Job) error
	FindByID(ctx context.Context, id kernel.JobID) (*Job, error)
	ExistsSlug(ctx context.Context, employerID kernel.UserID, slug string) (bool, error)
	ListPublished(ctx context.Context, filters Filters, opts kernel.PaginationOptions) (kernel.Paginated[Job], error)
	ListByEmployer(ctx context.Context, employerID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[Job], error)
	Delete(ctx context.Context, id kernel.JobID) error
	CountApplications(ctx context.Context, id kernel.JobID) (int, error)
}
