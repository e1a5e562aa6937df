package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// User is an account on the board: a candidate, an employer or an admin.
type User struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	FullName     string        `db:"full_name" json:"full_name"`
	Role         kernel.Role   `db:"role" json:"role"`
	Headline     string        `db:"headline" json:"headline,omitempty"`
	CompanyName  string        `db:"company_name" json:"company_name,omitempty"`
	IsActive     bool          `db:"is_active" json:"is_active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool { return u.IsActive }

// Deactivate disables the account. Existing tokens are revoked by the
// caller.
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DTO is the representation returned by the API.
type DTO struct {
	ID          kernel.UserID `json:"id"`
	Email       string        `json:"email"`
	FullName    string        `json:"full_name"`
	Role        kernel.Role   `json:"role"`
	Headline    string        `json:"headline,omitempty"`
	CompanyName string        `json:"company_name,omitempty"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ToDTO strips credentials from the model.
func (u *User) ToDTO() DTO {
	return DTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		Headline:    u.Headline,
		CompanyName: u.CompanyName,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound    = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailTaken      = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusConflict, "Email is already registered")
	CodeInvalidRole     = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Invalid role")
	CodeAccountDisabled = ErrRegistry.Register("ACCOUNT_DISABLED", errx.TypeForbidden, http.StatusForbidden, "Account is disabled")
	CodeWeakPassword    = ErrRegistry.Register("WEAK_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password does not meet requirements")
	CodeWrongPassword   = ErrRegistry.Register("WRONG_PASSWORD", errx.TypeAuthorization, http.StatusUnauthorized, "Current password is incorrect")
)

func ErrUserNotFound() *errx.Error    { return ErrRegistry.New(CodeUserNotFound) }
func ErrEmailTaken() *errx.Error      { return ErrRegistry.New(CodeEmailTaken) }
func ErrInvalidRole() *errx.Error     { return ErrRegistry.New(CodeInvalidRole) }
func ErrAccountDisabled() *errx.Error { return ErrRegistry.New(CodeAccountDisabled) }
func ErrWeakPassword() *errx.Error    { return ErrRegistry.New(CodeWeakPassword) }
func ErrWrongPassword() *errx.Error   { return ErrRegistry.New(CodeWrongPassword) }
