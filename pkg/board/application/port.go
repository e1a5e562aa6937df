package application

import (
	"context"

	"github.com/openhire/openhire/pkg/kernel"
)

// Repository is the persistence contract for applications.
type Repository interface {
	Save(ctx context.Context, a Application) error
	FindByID(ctx context.Context, id kernel.ApplicationID) (*Application, error)
	ExistsForJobAndCandidate(ctx context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error)
	ListByCandidate(ctx context.Context, candidateID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[Application], error)
	ListByJob(ctx context.Context, jobID kernel.JobID, status Status, opts kernel.PaginationOptions) (kernel.Paginated[Application], error)
}

// EventRepository persists the transition audit trail.
type EventRepository interface {
	Append(ctx context.Context, e Event) error
	ListByApplication(ctx context.Context, id kernel.ApplicationID) ([]Event, error)
}
