// Package applicationsrv implements the application workflow: apply with
// resume upload, the status machine, bulk updates and the audit trail.
package applicationsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openhire/openhire/pkg/board/application"
	"github.com/openhire/openhire/pkg/board/job"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/fsx"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
	"github.com/openhire/openhire/pkg/logx"
	"github.com/openhire/openhire/pkg/metrics"
	"github.com/openhire/openhire/pkg/notify"
	"github.com/openhire/openhire/pkg/taskx"
)

// ResumeUpload is the optional multipart resume attached to an apply call.
type ResumeUpload struct {
	Filename string
	Data     []byte
}

type ApplicationService struct {
	repo    application.Repository
	events  application.EventRepository
	jobs    job.Repository
	users   user.Repository
	storage fsx.FileSystem
	tasks   taskx.Enqueuer
	metrics *metrics.Metrics

	maxResumeSize int64
	now           func() time.Time
}

func NewApplicationService(
	repo application.Repository,
	events application.EventRepository,
	jobs job.Repository,
	users user.Repository,
	storage fsx.FileSystem,
	tasks taskx.Enqueuer,
	m *metrics.Metrics,
	maxResumeSize int64,
) *ApplicationService {
	return &ApplicationService{
		repo:          repo,
		events:        events,
		jobs:          jobs,
		users:         users,
		storage:       storage,
		tasks:         tasks,
		metrics:       m,
		maxResumeSize: maxResumeSize,
		now:           time.Now,
	}
}

// Apply submits a candidate's application to a published job.
func (s *ApplicationService) Apply(ctx context.Context, actor *kernel.AuthContext, req application.ApplyRequest, resume *ResumeUpload) (*application.Application, error) {
	if actor.Role != kernel.RoleCandidate {
		return nil, application.ErrNotCandidate()
	}

	jobID := kernel.NewJobID(req.JobID)
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.AcceptsApplications(s.now()) {
		return nil, application.ErrJobNotOpen().WithDetail("job_status", string(j.Status))
	}

	exists, err := s.repo.ExistsForJobAndCandidate(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, application.ErrDuplicate().WithDetail("job_id", req.JobID)
	}

	now := s.now().UTC()
	a := application.Application{
		ID:          kernel.NewApplicationID(uuid.NewString()),
		JobID:       jobID,
		CandidateID: actor.UserID,
		CoverLetter: req.CoverLetter,
		Status:      application.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if resume != nil {
		meta, err := application.ExtractResumeMeta(a.ID, resume.Filename, resume.Data, s.maxResumeSize)
		if err != nil {
			return nil, err
		}
		if err := s.storage.WriteFile(ctx, meta.Key, resume.Data); err != nil {
			return nil, errx.Wrap(err, "failed to store resume", errx.TypeInternal)
		}
		a.ResumeKey = meta.Key
		a.ResumeFilename = meta.Filename
		a.ResumeSize = meta.Size
		a.ResumeContentType = meta.ContentType
		a.ResumeSHA256 = meta.SHA256
	}

	// The unique (job_id, candidate_id) constraint backstops the exists
	// check under concurrent applies.
	if err := s.repo.Save(ctx, a); err != nil {
		if a.HasResume() {
			if derr := s.storage.DeleteFile(ctx, a.ResumeKey); derr != nil {
				logx.WithError(derr).Warn("Failed to clean up orphaned resume")
			}
		}
		return nil, err
	}

	s.metrics.ApplicationsSubmitted.Inc()
	s.enqueueReceivedEmail(ctx, j, &a, actor)

	return &a, nil
}

// Get returns an application to its candidate, the job owner or an admin.
func (s *ApplicationService) Get(ctx context.Context, id kernel.ApplicationID, actor *kernel.AuthContext) (*application.Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.viewerRole(ctx, a, actor); err != nil {
		return nil, err
	}
	return a, nil
}

// ListMine returns the candidate's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	return s.repo.ListByCandidate(ctx, actor.UserID, opts.Normalize())
}

// ListForJob returns a job's applications to its owner or an admin, with an
// optional status filter.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID kernel.JobID, actor *kernel.AuthContext, status application.Status, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return kernel.Paginated[application.Application]{}, err
	}
	if !actor.IsAdmin() && !j.IsOwnedBy(actor.UserID) {
		return kernel.Paginated[application.Application]{}, application.ErrAccessDenied()
	}
	if status != "" && !status.Valid() {
		return kernel.Paginated[application.Application]{}, application.ErrInvalidStatus().WithDetail("status", string(status))
	}
	return s.repo.ListByJob(ctx, jobID, status, opts.Normalize())
}

// Transition moves one application through the status machine.
func (s *ApplicationService) Transition(ctx context.Context, id kernel.ApplicationID, actor *kernel.AuthContext, req application.TransitionRequest) (*application.Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.viewerRole(ctx, a, actor)
	if err != nil {
		return nil, err
	}

	from := a.Status
	to := application.Status(req.Status)
	if err := a.Transition(to, role, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, *a); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, a, from, to, actor, req.Note)
	return a, nil
}

// BulkTransition applies one transition to many applications of one job.
// Valid items are applied; invalid ones are reported per item.
func (s *ApplicationService) BulkTransition(ctx context.Context, jobID kernel.JobID, actor *kernel.AuthContext, req application.BulkTransitionRequest) (*application.BulkReport, error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !j.IsOwnedBy(actor.UserID) {
		return nil, application.ErrAccessDenied()
	}

	to := application.Status(req.Status)
	if !to.Valid() {
		return nil, application.ErrInvalidStatus().WithDetail("status", req.Status)
	}

	report := &application.BulkReport{Results: make([]application.BulkItemResult, 0, len(req.ApplicationIDs))}
	for _, rawID := range req.ApplicationIDs {
		id := kernel.NewApplicationID(rawID)
		result := application.BulkItemResult{ApplicationID: rawID}

		if err := s.bulkOne(ctx, id, jobID, actor, to, req.Note); err != nil {
			xerr := errx.FromError(err)
			result.ErrorCode = xerr.Code
			result.Error = xerr.Message
			report.Failed++
		} else {
			result.OK = true
			report.Updated++
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (s *ApplicationService) bulkOne(ctx context.Context, id kernel.ApplicationID, jobID kernel.JobID, actor *kernel.AuthContext, to application.Status, note string) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if a.JobID != jobID {
		return application.ErrNotFound().WithDetail("application_id", id.String())
	}

	from := a.Status
	if err := a.Transition(to, application.ActorReviewer, s.now().UTC()); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, *a); err != nil {
		return err
	}
	s.recordTransition(ctx, a, from, to, actor, note)
	return nil
}

// Events returns the transition audit trail of an application. Reviewer
// notes live here, so the trail is reserved for the job owner and admins.
func (s *ApplicationService) Events(ctx context.Context, id kernel.ApplicationID, actor *kernel.AuthContext) ([]application.Event, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.viewerRole(ctx, a, actor)
	if err != nil {
		return nil, err
	}
	if role != application.ActorReviewer {
		return nil, application.ErrAccessDenied()
	}
	return s.events.ListByApplication(ctx, id)
}

// ResumeDownloadURL returns a time-limited link to the stored resume, or
// reads the content type for providers without presigning support.
func (s *ApplicationService) ResumeDownloadURL(ctx context.Context, id kernel.ApplicationID, actor *kernel.AuthContext, expiry time.Duration) (string, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := s.viewerRole(ctx, a, actor); err != nil {
		return "", err
	}
	if !a.HasResume() {
		return "", application.ErrNoResume()
	}

	presigner, ok := s.storage.(fsx.PresignedURLGenerator)
	if !ok {
		return "", errx.New("storage provider does not support download links", errx.TypeInternal)
	}
	return presigner.GetPresignedDownloadURL(ctx, a.ResumeKey, expiry)
}

// ResumeContent streams the stored resume bytes. Used by the local-disk
// deployment where presigned links do not exist.
func (s *ApplicationService) ResumeContent(ctx context.Context, id kernel.ApplicationID, actor *kernel.AuthContext) ([]byte, *application.Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.viewerRole(ctx, a, actor); err != nil {
		return nil, nil, err
	}
	if !a.HasResume() {
		return nil, nil, application.ErrNoResume()
	}

	data, err := s.storage.ReadFile(ctx, a.ResumeKey)
	if err != nil {
		return nil, nil, errx.Wrap(err, "failed to read resume", errx.TypeInternal)
	}
	return data, a, nil
}

// viewerRole resolves the FSM actor for actor, rejecting everyone who is
// neither the candidate, the job owner nor an admin.
func (s *ApplicationService) viewerRole(ctx context.Context, a *application.Application, actor *kernel.AuthContext) (application.Actor, error) {
	if actor == nil {
		return 0, application.ErrAccessDenied()
	}
	if a.CandidateID == actor.UserID {
		return application.ActorCandidate, nil
	}
	if actor.IsAdmin() {
		return application.ActorReviewer, nil
	}

	j, err := s.jobs.FindByID(ctx, a.JobID)
	if err != nil {
		return 0, err
	}
	if j.IsOwnedBy(actor.UserID) {
		return application.ActorReviewer, nil
	}
	return 0, application.ErrAccessDenied()
}

// recordTransition appends the audit event, bumps the counter and queues
// the candidate notification. Audit failures are logged, not surfaced: the
// state change has already been committed.
func (s *ApplicationService) recordTransition(ctx context.Context, a *application.Application, from, to application.Status, actor *kernel.AuthContext, note string) {
	event := application.Event{
		ID:            uuid.NewString(),
		ApplicationID: a.ID,
		FromStatus:    from,
		ToStatus:      to,
		ActorID:       actor.UserID,
		Note:          note,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		logx.WithError(err).WithField("application_id", a.ID).Error("Failed to append application event")
	}

	logx.WithFields(logx.Fields{
		"audit_event":    "application_transition",
		"application_id": a.ID,
		"from_status":    from,
		"to_status":      to,
		"actor_id":       actor.UserID,
	}).Info("Audit: application transition")

	s.metrics.ApplicationTransitions.WithLabelValues(string(to)).Inc()
	s.enqueueStatusEmail(ctx, a, to)
}

func (s *ApplicationService) enqueueReceivedEmail(ctx context.Context, j *job.Job, a *application.Application, candidate *kernel.AuthContext) {
	employer, err := s.users.FindByID(ctx, j.EmployerID)
	if err != nil {
		logx.WithError(err).Warn("Skipping application received email: employer lookup failed")
		return
	}

	task, err := notify.NewApplicationReceivedTask(notify.ApplicationReceivedPayload{
		EmployerEmail: employer.Email,
		EmployerName:  employer.FullName,
		CandidateName: candidate.Name,
		JobTitle:      j.Title,
		ApplicationID: a.ID.String(),
	})
	if err != nil {
		logx.WithError(err).Warn("Failed to build application received task")
		return
	}
	if _, err := s.tasks.Enqueue(ctx, task); err != nil {
		logx.WithError(err).Warn("Failed to enqueue application received email")
	}
}

func (s *ApplicationService) enqueueStatusEmail(ctx context.Context, a *application.Application, to application.Status) {
	// The candidate triggered a withdrawal themselves; no email needed.
	if to == application.StatusWithdrawn {
		return
	}

	candidate, err := s.users.FindByID(ctx, a.CandidateID)
	if err != nil {
		logx.WithError(err).Warn("Skipping status email: candidate lookup failed")
		return
	}
	j, err := s.jobs.FindByID(ctx, a.JobID)
	if err != nil {
		logx.WithError(err).Warn("Skipping status email: job lookup failed")
		return
	}

	task, err := notify.NewStatusChangedTask(notify.StatusChangedPayload{
		CandidateEmail: candidate.Email,
		CandidateName:  candidate.FullName,
		JobTitle:       j.Title,
		NewStatus:      string(to),
		ApplicationID:  a.ID.String(),
	})
	if err != nil {
		logx.WithError(err).Warn("Failed to build status changed task")
		return
	}
	if _, err := s.tasks.Enqueue(ctx, task); err != nil {
		logx.WithError(err).Warn("Failed to enqueue status changed email")
	}
}
