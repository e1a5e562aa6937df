package user

// RegisterRequest creates a new account. Role must be candidate or
// employer; admins are created out of band.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	FullName    string `json:"full_name" validate:"required,min=2,max=200"`
	Role        string `json:"role" validate:"required,oneof=candidate employer"`
	Headline    string `json:"headline" validate:"max=200"`
	CompanyName string `json:"company_name" validate:"max=200"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=200"`
	Headline    *string `json:"headline" validate:"omitempty,max=200"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
}

// ChangePasswordRequest rotates the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}
