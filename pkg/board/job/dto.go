package job

import "time"

// CreateRequest creates a posting in draft status.
type CreateRequest struct {
	CategoryID     string     `json:"category_id" validate:"required,uuid4"`
	Title          string     `json:"title" validate:"required,min=3,max=200"`
	Description    string     `json:"description" validate:"required,min=10"`
	Location       string     `json:"location" validate:"required,max=200"`
	EmploymentType string     `json:"employment_type" validate:"required,oneof=full_time part_time contract internship"`
	SalaryMin      *int64     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int64     `json:"salary_max" validate:"omitempty,min=0"`
	Deadline       *time.Time `json:"deadline"`
}

// UpdateRequest is a partial update of a posting.
type UpdateRequest struct {
	CategoryID     *string    `json:"category_id" validate:"omitempty,uuid4"`
	Title          *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description    *string    `json:"description" validate:"omitempty,min=10"`
	Location       *string    `json:"location" validate:"omitempty,max=200"`
	EmploymentType *string    `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract internship"`
	SalaryMin      *int64     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int64     `json:"salary_max" validate:"omitempty,min=0"`
	Deadline       *time.Time `json:"deadline"`
}

// Filters narrows the public listing. Zero values mean "no filter".
type Filters struct {
	CategoryID     string
	Location       string
	EmploymentType string
	SalaryFloor    *int64
	Search         string
}
