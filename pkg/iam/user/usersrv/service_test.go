package usersrv

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
)

type memoryRepo struct {
	users map[kernel.UserID]user.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[kernel.UserID]user.User)}
}

func (r *memoryRepo) Save(_ context.Context, u user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return &u, nil
}

func (r *memoryRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *memoryRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(context.Background(), email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memoryRepo) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	items := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		items = append(items, u)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

type noopAudit struct{}

func (noopAudit) LogAccountCreated(context.Context, kernel.UserID, kernel.Role, string) {}
func (noopAudit) LogPasswordChanged(context.Context, kernel.UserID, string)             {}
func (noopAudit) LogAccountDeactivated(context.Context, kernel.UserID, kernel.UserID)   {}

func newService(repo user.Repository) *UserService {
	return NewUserService(repo, noopAudit{}, bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "  Ada@Example.COM ",
		Password: "correct-horse",
		FullName: "Ada Lovelace",
		Role:     "candidate",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", dto.Email)
	}
	if dto.Role != kernel.RoleCandidate {
		t.Errorf("unexpected role: %q", dto.Role)
	}
	if !dto.IsActive {
		t.Error("new account should be active")
	}

	stored, err := repo.FindByID(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("find stored user: %v", err)
	}
	if stored.PasswordHash == "correct-horse" {
		t.Error("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(newMemoryRepo())

	req := user.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
		FullName: "First",
		Role:     "employer",
	}
	if _, err := svc.Register(context.Background(), req, ""); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), req, "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != user.CodeEmailTaken.Code {
		t.Fatalf("expected EMAIL_TAKEN, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newService(newMemoryRepo())

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "boss@example.com",
		Password: "password123",
		FullName: "Boss",
		Role:     "admin",
	}, "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != user.CodeInvalidRole.Code {
		t.Fatalf("expected INVALID_ROLE, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "p@example.com",
		Password: "password123",
		FullName: "Before",
		Role:     "employer",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	headline := "Hiring Go engineers"
	updated, err := svc.UpdateProfile(context.Background(), dto.ID, user.UpdateProfileRequest{
		Headline: &headline,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Headline != headline {
		t.Errorf("headline = %q, want %q", updated.Headline, headline)
	}
	if updated.FullName != "Before" {
		t.Errorf("full name changed unexpectedly: %q", updated.FullName)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "pw@example.com",
		Password: "original-pass",
		FullName: "PW",
		Role:     "candidate",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.ChangePassword(context.Background(), dto.ID, user.ChangePasswordRequest{
		CurrentPassword: "wrong-pass",
		NewPassword:     "brand-new-pass",
	}, "")
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != user.CodeWrongPassword.Code {
		t.Fatalf("expected WRONG_PASSWORD, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), dto.ID, user.ChangePasswordRequest{
		CurrentPassword: "original-pass",
		NewPassword:     "brand-new-pass",
	}, "")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), dto.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-pass")); err != nil {
		t.Errorf("new password does not verify: %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "bye@example.com",
		Password: "password123",
		FullName: "Bye",
		Role:     "candidate",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Deactivate(context.Background(), dto.ID, kernel.NewUserID("admin-1")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), dto.ID)
	if stored.IsActive {
		t.Error("account still active after deactivation")
	}
	if stored.CanLogin() {
		t.Error("deactivated account can still log in")
	}
}
