package applicationsrv

import (
	"context"
	"errors"
	"io"
	"path"
	"testing"
	"time"

	"github.com/openhire/openhire/pkg/board/application"
	"github.com/openhire/openhire/pkg/board/job"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/fsx"
	"github.com/openhire/openhire/pkg/iam/user"
	"github.com/openhire/openhire/pkg/kernel"
	"github.com/openhire/openhire/pkg/metrics"
	"github.com/openhire/openhire/pkg/taskx"
)

// ---------------------------------------------------------------------------
// fakes

type memoryApps struct {
	byID map[kernel.ApplicationID]application.Application
}

func (r *memoryApps) Save(_ context.Context, a application.Application) error {
	r.byID[a.ID] = a
	return nil
}

func (r *memoryApps) FindByID(_ context.Context, id kernel.ApplicationID) (*application.Application, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, application.ErrNotFound()
	}
	return &a, nil
}

func (r *memoryApps) ExistsForJobAndCandidate(_ context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error) {
	for _, a := range r.byID {
		if a.JobID == jobID && a.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryApps) ListByCandidate(_ context.Context, candidateID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	var items []application.Application
	for _, a := range r.byID {
		if a.CandidateID == candidateID {
			items = append(items, a)
		}
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

func (r *memoryApps) ListByJob(_ context.Context, jobID kernel.JobID, status application.Status, opts kernel.PaginationOptions) (kernel.Paginated[application.Application], error) {
	var items []application.Application
	for _, a := range r.byID {
		if a.JobID == jobID && (status == "" || a.Status == status) {
			items = append(items, a)
		}
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

type memoryEvents struct {
	events []application.Event
}

func (r *memoryEvents) Append(_ context.Context, e application.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *memoryEvents) ListByApplication(_ context.Context, id kernel.ApplicationID) ([]application.Event, error) {
	var out []application.Event
	for _, e := range r.events {
		if e.ApplicationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryJobs struct {
	byID map[kernel.JobID]job.Job
}

func (r *memoryJobs) Save(_ context.Context, j job.Job) error {
	r.byID[j.ID] = j
	return nil
}

func (r *memoryJobs) FindByID(_ context.Context, id kernel.JobID) (*job.Job, error) {
	j, ok := r.byID[id]
	if !ok {
		return nil, job.ErrNotFound()
	}
	return &j, nil
}

func (r *memoryJobs) ExistsSlug(context.Context, kernel.UserID, string) (bool, error) {
	return false, nil
}

func (r *memoryJobs) ListPublished(_ context.Context, _ job.Filters, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	return kernel.Paginated[job.Job]{}, nil
}

func (r *memoryJobs) ListByEmployer(_ context.Context, _ kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	return kernel.Paginated[job.Job]{}, nil
}

func (r *memoryJobs) Delete(context.Context, kernel.JobID) error { return nil }

func (r *memoryJobs) CountApplications(context.Context, kernel.JobID) (int, error) { return 0, nil }

type memoryUsers struct {
	byID map[kernel.UserID]user.User
}

func (r *memoryUsers) Save(_ context.Context, u user.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrUserNotFound()
}

func (r *memoryUsers) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func (r *memoryUsers) List(_ context.Context, _ kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	return kernel.Paginated[user.User]{}, nil
}

type memoryStorage struct {
	files map[string][]byte
}

func (s *memoryStorage) ReadFile(_ context.Context, p string) ([]byte, error) {
	data, ok := s.files[p]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (s *memoryStorage) ReadFileStream(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *memoryStorage) Stat(context.Context, string) (fsx.FileInfo, error) {
	return fsx.FileInfo{}, errors.New("not implemented")
}

func (s *memoryStorage) Exists(_ context.Context, p string) (bool, error) {
	_, ok := s.files[p]
	return ok, nil
}

func (s *memoryStorage) WriteFile(_ context.Context, p string, data []byte) error {
	s.files[p] = data
	return nil
}

func (s *memoryStorage) WriteFileStream(_ context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[p] = data
	return nil
}

func (s *memoryStorage) DeleteFile(_ context.Context, p string) error {
	delete(s.files, p)
	return nil
}

func (s *memoryStorage) Join(elem ...string) string { return path.Join(elem...) }

type recordingEnqueuer struct {
	tasks []taskx.Task
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, t taskx.Task) (string, error) {
	e.tasks = append(e.tasks, t)
	return "task-1", nil
}

func (e *recordingEnqueuer) EnqueueDelayed(_ context.Context, t taskx.Task, _ time.Duration) (string, error) {
	e.tasks = append(e.tasks, t)
	return "task-1", nil
}

// ---------------------------------------------------------------------------
// fixture

const (
	jobID       = "job-1"
	employerID  = "emp-1"
	candidateID = "cand-1"
)

type fixture struct {
	svc     *ApplicationService
	apps    *memoryApps
	events  *memoryEvents
	jobs    *memoryJobs
	storage *memoryStorage
	queue   *recordingEnqueuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	apps := &memoryApps{byID: make(map[kernel.ApplicationID]application.Application)}
	events := &memoryEvents{}
	jobs := &memoryJobs{byID: make(map[kernel.JobID]job.Job)}
	users := &memoryUsers{byID: make(map[kernel.UserID]user.User)}
	storage := &memoryStorage{files: make(map[string][]byte)}
	queue := &recordingEnqueuer{}

	jobs.byID[kernel.NewJobID(jobID)] = job.Job{
		ID:         kernel.NewJobID(jobID),
		EmployerID: kernel.NewUserID(employerID),
		Title:      "Backend Engineer",
		Status:     job.StatusPublished,
	}
	users.byID[kernel.NewUserID(employerID)] = user.User{
		ID: kernel.NewUserID(employerID), Email: "emp@example.com", FullName: "Employer", Role: kernel.RoleEmployer, IsActive: true,
	}
	users.byID[kernel.NewUserID(candidateID)] = user.User{
		ID: kernel.NewUserID(candidateID), Email: "cand@example.com", FullName: "Candidate", Role: kernel.RoleCandidate, IsActive: true,
	}

	svc := NewApplicationService(apps, events, jobs, users, storage, queue, metrics.New(), 1<<20)
	return &fixture{svc: svc, apps: apps, events: events, jobs: jobs, storage: storage, queue: queue}
}

func candidate() *kernel.AuthContext {
	return &kernel.AuthContext{
		UserID: kernel.NewUserID(candidateID),
		Name:   "Candidate",
		Role:   kernel.RoleCandidate,
		Scopes: kernel.ScopesFor(kernel.RoleCandidate),
	}
}

func otherCandidate(id string) *kernel.AuthContext {
	return &kernel.AuthContext{
		UserID: kernel.NewUserID(id),
		Role:   kernel.RoleCandidate,
		Scopes: kernel.ScopesFor(kernel.RoleCandidate),
	}
}

func employer() *kernel.AuthContext {
	return &kernel.AuthContext{
		UserID: kernel.NewUserID(employerID),
		Role:   kernel.RoleEmployer,
		Scopes: kernel.ScopesFor(kernel.RoleEmployer),
	}
}

func admin() *kernel.AuthContext {
	return &kernel.AuthContext{
		UserID: kernel.NewUserID("admin-1"),
		Role:   kernel.RoleAdmin,
		Scopes: kernel.ScopesFor(kernel.RoleAdmin),
	}
}

func apply(t *testing.T, f *fixture, actor *kernel.AuthContext) *application.Application {
	t.Helper()
	a, err := f.svc.Apply(context.Background(), actor, application.ApplyRequest{
		JobID:       jobID,
		CoverLetter: "I would love to work here.",
	}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return a
}

func assertCode(t *testing.T, err error, want *errx.ErrorCode) {
	t.Helper()
	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *errx.Error, got %v", err)
	}
	if xerr.Code != want.Code {
		t.Fatalf("code = %s, want %s", xerr.Code, want.Code)
	}
}

// ---------------------------------------------------------------------------
// apply

func TestApply(t *testing.T) {
	f := newFixture(t)

	a := apply(t, f, candidate())
	if a.Status != application.StatusPending {
		t.Errorf("status = %q, want pending", a.Status)
	}

	// The employer notification is queued.
	if len(f.queue.tasks) != 1 {
		t.Fatalf("queued tasks = %d, want 1", len(f.queue.tasks))
	}
	if f.queue.tasks[0].Type != "email:application_received" {
		t.Errorf("task type = %q", f.queue.tasks[0].Type)
	}
}

func TestApplyDuplicate(t *testing.T) {
	f := newFixture(t)

	apply(t, f, candidate())
	_, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, nil)
	assertCode(t, err, application.CodeDuplicate)
}

func TestApplyEmployerRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), employer(), application.ApplyRequest{JobID: jobID}, nil)
	assertCode(t, err, application.CodeNotCandidate)
}

func TestApplyToUnpublishedJob(t *testing.T) {
	f := newFixture(t)

	j := f.jobs.byID[kernel.NewJobID(jobID)]
	j.Status = job.StatusClosed
	f.jobs.byID[kernel.NewJobID(jobID)] = j

	_, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, nil)
	assertCode(t, err, application.CodeJobNotOpen)
}

func TestApplyAfterDeadline(t *testing.T) {
	f := newFixture(t)

	past := time.Now().Add(-time.Hour)
	j := f.jobs.byID[kernel.NewJobID(jobID)]
	j.Deadline = &past
	f.jobs.byID[kernel.NewJobID(jobID)] = j

	_, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, nil)
	assertCode(t, err, application.CodeJobNotOpen)
}

func TestApplyWithResume(t *testing.T) {
	f := newFixture(t)

	pdf := []byte("%PDF-1.4 test resume content")
	a, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, &ResumeUpload{
		Filename: "cv.pdf",
		Data:     pdf,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !a.HasResume() {
		t.Fatal("resume metadata missing")
	}
	if a.ResumeContentType != "application/pdf" {
		t.Errorf("content type = %q", a.ResumeContentType)
	}
	stored, ok := f.storage.files[a.ResumeKey]
	if !ok {
		t.Fatalf("resume not written under %q", a.ResumeKey)
	}
	if string(stored) != string(pdf) {
		t.Error("stored resume differs from upload")
	}
}

func TestApplyRejectsOversizedResume(t *testing.T) {
	f := newFixture(t)

	big := append([]byte("%PDF-1.4 "), make([]byte, 2<<20)...)
	_, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, &ResumeUpload{
		Filename: "cv.pdf",
		Data:     big,
	})
	assertCode(t, err, application.CodeResumeTooLarge)
	if len(f.storage.files) != 0 {
		t.Error("rejected resume was stored")
	}
}

// ---------------------------------------------------------------------------
// transitions

func TestTransitionReviewByEmployer(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	updated, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{
		Status: "reviewed",
		Note:   "Good fit on paper",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != application.StatusReviewed {
		t.Errorf("status = %q", updated.Status)
	}

	events, err := f.svc.Events(context.Background(), a.ID, employer())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].FromStatus != application.StatusPending || events[0].ToStatus != application.StatusReviewed {
		t.Errorf("event = %s -> %s", events[0].FromStatus, events[0].ToStatus)
	}
	if events[0].Note != "Good fit on paper" {
		t.Errorf("note = %q", events[0].Note)
	}
}

func TestEventsHiddenFromCandidate(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{
		Status: "reviewed",
		Note:   "References look thin, offer low",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}

	_, err = f.svc.Events(context.Background(), a.ID, candidate())
	assertCode(t, err, application.CodeAccessDenied)

	if _, err := f.svc.Events(context.Background(), a.ID, admin()); err != nil {
		t.Errorf("admin should read the trail: %v", err)
	}
}

func TestTransitionAcceptEnqueuesEmail(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())
	f.queue.tasks = nil

	if _, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{Status: "accepted"}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(f.queue.tasks) != 1 || f.queue.tasks[0].Type != "email:application_status_changed" {
		t.Fatalf("queue = %+v", f.queue.tasks)
	}
}

func TestTransitionWithdrawByCandidate(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	updated, err := f.svc.Transition(context.Background(), a.ID, candidate(), application.TransitionRequest{Status: "withdrawn"})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if updated.Status != application.StatusWithdrawn {
		t.Errorf("status = %q", updated.Status)
	}
}

func TestTransitionCandidateCannotAccept(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.Transition(context.Background(), a.ID, candidate(), application.TransitionRequest{Status: "accepted"})
	assertCode(t, err, application.CodeActorNotAllowed)
}

func TestTransitionEmployerCannotWithdraw(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{Status: "withdrawn"})
	assertCode(t, err, application.CodeActorNotAllowed)
}

func TestTransitionStrangerDenied(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.Transition(context.Background(), a.ID, otherCandidate("cand-2"), application.TransitionRequest{Status: "withdrawn"})
	assertCode(t, err, application.CodeAccessDenied)
}

func TestTransitionOutOfFinal(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	if _, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{Status: "rejected"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{Status: "accepted"})
	assertCode(t, err, application.CodeFinalStatus)
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.Transition(context.Background(), a.ID, employer(), application.TransitionRequest{Status: "archived"})
	assertCode(t, err, application.CodeInvalidStatus)
}

func TestAdminMayReview(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	if _, err := f.svc.Transition(context.Background(), a.ID, admin(), application.TransitionRequest{Status: "reviewed"}); err != nil {
		t.Fatalf("admin review: %v", err)
	}
}

// ---------------------------------------------------------------------------
// bulk

func TestBulkTransitionPartial(t *testing.T) {
	f := newFixture(t)

	a1 := apply(t, f, candidate())
	a2, err := f.svc.Apply(context.Background(), otherCandidate("cand-2"), application.ApplyRequest{JobID: jobID}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// a2 is withdrawn, so rejecting it must fail while a1 succeeds.
	if _, err := f.svc.Transition(context.Background(), a2.ID, otherCandidate("cand-2"), application.TransitionRequest{Status: "withdrawn"}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	report, err := f.svc.BulkTransition(context.Background(), kernel.NewJobID(jobID), employer(), application.BulkTransitionRequest{
		ApplicationIDs: []string{a1.ID.String(), a2.ID.String(), "missing-id"},
		Status:         "rejected",
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}

	if report.Updated != 1 || report.Failed != 2 {
		t.Fatalf("updated = %d failed = %d", report.Updated, report.Failed)
	}
	if !report.Results[0].OK {
		t.Errorf("a1 result: %+v", report.Results[0])
	}
	if report.Results[1].OK || report.Results[1].ErrorCode != application.CodeFinalStatus.Code {
		t.Errorf("a2 result: %+v", report.Results[1])
	}
	if report.Results[2].OK || report.Results[2].ErrorCode != application.CodeNotFound.Code {
		t.Errorf("missing result: %+v", report.Results[2])
	}

	stored, _ := f.svc.Get(context.Background(), a1.ID, employer())
	if stored.Status != application.StatusRejected {
		t.Errorf("a1 status = %q", stored.Status)
	}
}

func TestBulkTransitionOwnershipRequired(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	_, err := f.svc.BulkTransition(context.Background(), kernel.NewJobID(jobID), otherCandidate("cand-2"), application.BulkTransitionRequest{
		ApplicationIDs: []string{a.ID.String()},
		Status:         "rejected",
	})
	assertCode(t, err, application.CodeAccessDenied)
}

func TestBulkTransitionSkipsForeignApplications(t *testing.T) {
	f := newFixture(t)

	// An application on a different job must not be reachable through this
	// job's bulk endpoint.
	foreign := application.Application{
		ID:          kernel.NewApplicationID("foreign-1"),
		JobID:       kernel.NewJobID("job-2"),
		CandidateID: kernel.NewUserID(candidateID),
		Status:      application.StatusPending,
	}
	f.apps.byID[foreign.ID] = foreign

	report, err := f.svc.BulkTransition(context.Background(), kernel.NewJobID(jobID), employer(), application.BulkTransitionRequest{
		ApplicationIDs: []string{"foreign-1"},
		Status:         "rejected",
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if report.Updated != 0 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if f.apps.byID[foreign.ID].Status != application.StatusPending {
		t.Error("foreign application was modified")
	}
}

// ---------------------------------------------------------------------------
// visibility

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	a := apply(t, f, candidate())

	if _, err := f.svc.Get(context.Background(), a.ID, candidate()); err != nil {
		t.Errorf("candidate get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, employer()); err != nil {
		t.Errorf("employer get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, admin()); err != nil {
		t.Errorf("admin get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, otherCandidate("cand-2")); err == nil {
		t.Error("stranger get succeeded")
	}
}

func TestListForJobStatusFilter(t *testing.T) {
	f := newFixture(t)

	a1 := apply(t, f, candidate())
	if _, err := f.svc.Apply(context.Background(), otherCandidate("cand-2"), application.ApplyRequest{JobID: jobID}, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), a1.ID, employer(), application.TransitionRequest{Status: "reviewed"}); err != nil {
		t.Fatalf("review: %v", err)
	}

	page, err := f.svc.ListForJob(context.Background(), kernel.NewJobID(jobID), employer(), application.StatusReviewed, kernel.PaginationOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}

	_, err = f.svc.ListForJob(context.Background(), kernel.NewJobID(jobID), employer(), application.Status("bogus"), kernel.PaginationOptions{})
	assertCode(t, err, application.CodeInvalidStatus)

	_, err = f.svc.ListForJob(context.Background(), kernel.NewJobID(jobID), otherCandidate("cand-2"), "", kernel.PaginationOptions{})
	assertCode(t, err, application.CodeAccessDenied)
}

func TestResumeContent(t *testing.T) {
	f := newFixture(t)

	pdf := []byte("%PDF-1.4 resume body")
	a, err := f.svc.Apply(context.Background(), candidate(), application.ApplyRequest{JobID: jobID}, &ResumeUpload{
		Filename: "cv.pdf",
		Data:     pdf,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	data, stored, err := f.svc.ResumeContent(context.Background(), a.ID, employer())
	if err != nil {
		t.Fatalf("resume content: %v", err)
	}
	if string(data) != string(pdf) {
		t.Error("resume bytes differ")
	}
	if stored.ResumeFilename != "cv.pdf" {
		t.Errorf("filename = %q", stored.ResumeFilename)
	}

	// Without an upload there is nothing to download.
	plain, err := f.svc.Apply(context.Background(), otherCandidate("cand-2"), application.ApplyRequest{JobID: jobID}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	_, _, err = f.svc.ResumeContent(context.Background(), plain.ID, employer())
	assertCode(t, err, application.CodeNoResume)
}
