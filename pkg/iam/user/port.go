package user

import (
	"context"

	"github.com/openhire/openhire/pkg/kernel"
)

// Repository is the persistence contract for users.
type Repository interface {
	Save(ctx context.Context, u User) error
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[User], error)
}
