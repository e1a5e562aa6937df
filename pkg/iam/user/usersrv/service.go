// Package usersrv holds account management: registration, profile
// updates, password rotation and the admin listing.
package usersrv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
)

// AuditService records account lifecycle events.
type AuditService interface {
	LogAccountCreated(ctx context.Context, userID kernel.UserID, role kernel.Role, ip string)
	LogPasswordChanged(ctx context.Context, userID kernel.UserID, ip string)
	LogAccountDeactivated(ctx context.Context, userID kernel.UserID, actorID kernel.UserID)
}

type UserService struct {
	repo       user.Repository
	audit      AuditService
	bcryptCost int
}

func NewUserService(repo user.Repository, audit AuditService, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, audit: audit, bcryptCost: bcryptCost}
}

// Register creates a candidate or employer account.
func (s *UserService) Register(ctx context.Context, req user.RegisterRequest, ip string) (*user.DTO, error) {
	role := kernel.Role(req.Role)
	if role != kernel.RoleCandidate && role != kernel.RoleEmployer {
		return nil, user.ErrInvalidRole().WithDetail("role", req.Role)
	}

	email := user.NormalizeEmail(req.Email)
	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check email availability", errx.TypeInternal)
	}
	if taken {
		return nil, user.ErrEmailTaken().WithDetail("email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		Headline:     req.Headline,
		CompanyName:  req.CompanyName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.audit.LogAccountCreated(ctx, u.ID, u.Role, ip)

	dto := u.ToDTO()
	return &dto, nil
}

// GetByID returns one user.
func (s *UserService) GetByID(ctx context.Context, id kernel.UserID) (*user.DTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

// UpdateProfile applies a partial profile update to the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, id kernel.UserID, req user.UpdateProfileRequest) (*user.DTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Headline != nil {
		u.Headline = *req.Headline
	}
	if req.CompanyName != nil {
		u.CompanyName = *req.CompanyName
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, *u); err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id kernel.UserID, req user.ChangePasswordRequest, ip string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return user.ErrWrongPassword()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, *u); err != nil {
		return err
	}
	s.audit.LogPasswordChanged(ctx, id, ip)
	return nil
}

// List returns a page of users; admin only, enforced at the route.
func (s *UserService) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.DTO], error) {
	page, err := s.repo.List(ctx, opts.Normalize())
	if err != nil {
		return kernel.Paginated[user.DTO]{}, err
	}

	dtos := make([]user.DTO, 0, len(page.Items))
	for _, u := range page.Items {
		dtos = append(dtos, u.ToDTO())
	}
	return kernel.NewPaginated(dtos, page.Page.Number, page.Page.Size, page.Page.Total), nil
}

// Deactivate disables an account; admin only, enforced at the route.
func (s *UserService) Deactivate(ctx context.Context, id kernel.UserID, actorID kernel.UserID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	u.Deactivate()
	if err := s.repo.Save(ctx, *u); err != nil {
		return err
	}
	s.audit.LogAccountDeactivated(ctx, id, actorID)
	return nil
}
