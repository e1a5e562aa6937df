// Package application models job applications and their status workflow.
package application

import (
	"net/http"
	"time"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// Status is the workflow state of an application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// IsFinal reports whether no transition may leave s.
func (s Status) IsFinal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Actor is who is driving a transition, resolved by the service from the
// auth context and the job ownership.
type Actor int

const (
	ActorCandidate Actor = iota
	ActorReviewer        // job owner or admin
)

// Application is one candidate's application to one job.
type Application struct {
	ID          kernel.ApplicationID `db:"id" json:"id"`
	JobID       kernel.JobID         `db:"job_id" json:"job_id"`
	CandidateID kernel.UserID        `db:"candidate_id" json:"candidate_id"`
	CoverLetter string               `db:"cover_letter" json:"cover_letter,omitempty"`
	Status      Status               `db:"status" json:"status"`

	ResumeKey         string `db:"resume_key" json:"-"`
	ResumeFilename    string `db:"resume_filename" json:"resume_filename,omitempty"`
	ResumeSize        int64  `db:"resume_size" json:"resume_size,omitempty"`
	ResumeContentType string `db:"resume_content_type" json:"resume_content_type,omitempty"`
	ResumeSHA256      string `db:"resume_sha256" json:"resume_sha256,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasResume reports whether a resume was uploaded with the application.
func (a *Application) HasResume() bool { return a.ResumeKey != "" }

// CanTransition checks one step of the status machine without applying it.
//
//	pending  → reviewed              reviewer
//	pending  | reviewed → accepted   reviewer
//	pending  | reviewed → rejected   reviewer
//	pending  | reviewed → withdrawn  candidate
//
// Final states never transition; a self-transition is rejected.
func (a *Application) CanTransition(to Status, actor Actor) error {
	if !to.Valid() {
		return ErrInvalidStatus().WithDetail("status", string(to))
	}
	if a.Status == to {
		return ErrSameStatus().WithDetail("status", string(to))
	}
	if a.Status.IsFinal() {
		return ErrFinalStatus().
			WithDetail("current", string(a.Status)).
			WithDetail("requested", string(to))
	}

	switch to {
	case StatusReviewed:
		if actor != ActorReviewer {
			return ErrActorNotAllowed().WithDetail("requested", string(to))
		}
		if a.Status != StatusPending {
			return ErrInvalidTransition().
				WithDetail("current", string(a.Status)).
				WithDetail("requested", string(to))
		}
	case StatusAccepted, StatusRejected:
		if actor != ActorReviewer {
			return ErrActorNotAllowed().WithDetail("requested", string(to))
		}
	case StatusWithdrawn:
		if actor != ActorCandidate {
			return ErrActorNotAllowed().WithDetail("requested", string(to))
		}
	case StatusPending:
		return ErrInvalidTransition().
			WithDetail("current", string(a.Status)).
			WithDetail("requested", string(to))
	}
	return nil
}

// Transition applies one step of the status machine.
func (a *Application) Transition(to Status, actor Actor, now time.Time) error {
	if err := a.CanTransition(to, actor); err != nil {
		return err
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}

// Event is one audit trail row: a single status transition.
type Event struct {
	ID            string               `db:"id" json:"id"`
	ApplicationID kernel.ApplicationID `db:"application_id" json:"application_id"`
	FromStatus    Status               `db:"from_status" json:"from_status"`
	ToStatus      Status               `db:"to_status" json:"to_status"`
	ActorID       kernel.UserID        `db:"actor_id" json:"actor_id"`
	Note          string               `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
}

var ErrRegistry = errx.NewRegistry("APPLICATION")

var (
	CodeNotFound          = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application not found")
	CodeDuplicate         = ErrRegistry.Register("DUPLICATE", errx.TypeConflict, http.StatusConflict, "You have already applied to this job")
	CodeJobNotOpen        = ErrRegistry.Register("JOB_NOT_OPEN", errx.TypeBusiness, http.StatusUnprocessableEntity, "Job is not accepting applications")
	CodeNotCandidate      = ErrRegistry.Register("NOT_CANDIDATE", errx.TypeForbidden, http.StatusForbidden, "Only candidates may apply")
	CodeAccessDenied      = ErrRegistry.Register("ACCESS_DENIED", errx.TypeForbidden, http.StatusForbidden, "Not allowed to view this application")
	CodeInvalidStatus     = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Unknown application status")
	CodeSameStatus        = ErrRegistry.Register("SAME_STATUS", errx.TypeBusiness, http.StatusUnprocessableEntity, "Application is already in this status")
	CodeFinalStatus       = ErrRegistry.Register("FINAL_STATUS", errx.TypeBusiness, http.StatusUnprocessableEntity, "Application is in a final status")
	CodeInvalidTransition = ErrRegistry.Register("INVALID_TRANSITION", errx.TypeBusiness, http.StatusUnprocessableEntity, "Transition not allowed from the current status")
	CodeActorNotAllowed   = ErrRegistry.Register("ACTOR_NOT_ALLOWED", errx.TypeForbidden, http.StatusForbidden, "This actor may not perform the transition")
	CodeNoResume          = ErrRegistry.Register("NO_RESUME", errx.TypeNotFound, http.StatusNotFound, "Application has no resume")
)

func ErrNotFound() *errx.Error          { return ErrRegistry.New(CodeNotFound) }
func ErrDuplicate() *errx.Error         { return ErrRegistry.New(CodeDuplicate) }
func ErrJobNotOpen() *errx.Error        { return ErrRegistry.New(CodeJobNotOpen) }
func ErrNotCandidate() *errx.Error      { return ErrRegistry.New(CodeNotCandidate) }
func ErrAccessDenied() *errx.Error      { return ErrRegistry.New(CodeAccessDenied) }
func ErrInvalidStatus() *errx.Error     { return ErrRegistry.New(CodeInvalidStatus) }
func ErrSameStatus() *errx.Error        { return ErrRegistry.New(CodeSameStatus) }
func ErrFinalStatus() *errx.Error       { return ErrRegistry.New(CodeFinalStatus) }
func ErrInvalidTransition() *errx.Error { return ErrRegistry.New(CodeInvalidTransition) }
func ErrActorNotAllowed() *errx.Error   { return ErrRegistry.New(CodeActorNotAllowed) }
func ErrNoResume() *errx.Error          { return ErrRegistry.New(CodeNoResume) }
