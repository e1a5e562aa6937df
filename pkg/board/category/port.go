package category

import (
	"context"

	"github.com/openhire/openhire/pkg/kernel"
)

// Repository is the persistence contract for categories.
type Repository interface {
	Save(ctx context.Context, c Category) error
	FindByID(ctx context.Context, id kernel.CategoryID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id kernel.CategoryID) error
	CountJobs(ctx context.Context, id kernel.CategoryID) (int, error)
}
