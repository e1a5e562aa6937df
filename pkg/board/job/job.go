// Package job models job postings: the employer-owned listings candidates
// apply to.
package job

import (
	"net/http"
	"time"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// Status is the lifecycle state of a posting.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed:
		return true
	}
	return false
}

// EmploymentType classifies the position.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship:
		return true
	}
	return false
}

// Job is a posting on the board.
type Job struct {
	ID             kernel.JobID      `db:"id" json:"id"`
	EmployerID     kernel.UserID     `db:"employer_id" json:"employer_id"`
	CategoryID     kernel.CategoryID `db:"category_id" json:"category_id"`
	Title          string            `db:"title" json:"title"`
	Slug           string            `db:"slug" json:"slug"`
	Description    string            `db:"description" json:"description"`
	Location       string            `db:"location" json:"location"`
	EmploymentType EmploymentType    `db:"employment_type" json:"employment_type"`
	SalaryMin      *int64            `db:"salary_min" json:"salary_min,omitempty"`
	SalaryMax      *int64            `db:"salary_max" json:"salary_max,omitempty"`
	Status         Status            `db:"status" json:"status"`
	Deadline       *time.Time        `db:"deadline" json:"deadline,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// IsOwnedBy reports whether userID is the posting employer.
func (j *Job) IsOwnedBy(userID kernel.UserID) bool {
	return j.EmployerID == userID
}

// DeadlinePassed reports whether the application deadline is in the past.
// A posting without a deadline never expires.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return j.Deadline != nil && now.After(*j.Deadline)
}

// AcceptsApplications reports whether a candidate may apply right now.
func (j *Job) AcceptsApplications(now time.Time) bool {
	return j.Status == StatusPublished && !j.DeadlinePassed(now)
}

// Publish moves the posting to published. Closed postings may be re-opened
// until their deadline passes.
func (j *Job) Publish(now time.Time) error {
	if j.Status == StatusPublished {
		return ErrAlreadyPublished()
	}
	if j.DeadlinePassed(now) {
		return ErrDeadlinePassed()
	}
	j.Status = StatusPublished
	j.UpdatedAt = now
	return nil
}

// Close stops the posting from accepting applications.
func (j *Job) Close(now time.Time) error {
	if j.Status == StatusClosed {
		return ErrAlreadyClosed()
	}
	j.Status = StatusClosed
	j.UpdatedAt = now
	return nil
}

var ErrRegistry = errx.NewRegistry("JOB")

var (
	CodeNotFound         = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeNotOwner         = ErrRegistry.Register("NOT_OWNER", errx.TypeForbidden, http.StatusForbidden, "Only the posting employer may do this")
	CodeInvalidSalary    = ErrRegistry.Register("INVALID_SALARY", errx.TypeValidation, http.StatusBadRequest, "salary_min must not exceed salary_max")
	CodeInvalidType      = ErrRegistry.Register("INVALID_TYPE", errx.TypeValidation, http.StatusBadRequest, "Invalid employment type")
	CodeAlreadyPublished = ErrRegistry.Register("ALREADY_PUBLISHED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Job is already published")
	CodeAlreadyClosed    = ErrRegistry.Register("ALREADY_CLOSED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Job is already closed")
	CodeDeadlinePassed   = ErrRegistry.Register("DEADLINE_PASSED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Application deadline has passed")
	CodeHasApplications  = ErrRegistry.Register("HAS_APPLICATIONS", errx.TypeConflict, http.StatusConflict, "Job has applications and cannot be deleted; close it instead")
	CodeDuplicateSlug    = ErrRegistry.Register("DUPLICATE_SLUG", errx.TypeConflict, http.StatusConflict, "Employer already has a job with this slug")
)

func ErrNotFound() *errx.Error         { return ErrRegistry.New(CodeNotFound) }
func ErrNotOwner() *errx.Error         { return ErrRegistry.New(CodeNotOwner) }
func ErrInvalidSalary() *errx.Error    { return ErrRegistry.New(CodeInvalidSalary) }
func ErrInvalidType() *errx.Error      { return ErrRegistry.New(CodeInvalidType) }
func ErrAlreadyPublished() *errx.Error { return ErrRegistry.New(CodeAlreadyPublished) }
func ErrAlreadyClosed() *errx.Error    { return ErrRegistry.New(CodeAlreadyClosed) }
func ErrDeadlinePassed() *errx.Error   { return ErrRegistry.New(CodeDeadlinePassed) }
func ErrHasApplications() *errx.Error  { return ErrRegistry.New(CodeHasApplications) }
func ErrDuplicateSlug() *errx.Error    { return ErrRegistry.New(CodeDuplicateSlug) }
