// Package jobsrv implements posting management: drafting, publishing,
// closing and the public listing.
package jobsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openhire/openhire/pkg/board/category"
	"github.com/openhire/openhire/pkg/board/job"
	"github.com/openhire/openhire/pkg/kernel"
	"github.com/openhire/openhire/pkg/metrics"
)

type JobService struct {
	repo       job.Repository
	categories category.Repository
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewJobService(repo job.Repository, categories category.Repository, m *metrics.Metrics) *JobService {
	return &JobService{repo: repo, categories: categories, metrics: m, now: time.Now}
}

// Create drafts a posting for the calling employer.
func (s *JobService) Create(ctx context.Context, employerID kernel.UserID, req job.CreateRequest) (*job.Job, error) {
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		return nil, job.ErrInvalidSalary().
			WithDetail("salary_min", *req.SalaryMin).
			WithDetail("salary_max", *req.SalaryMax)
	}

	catID := kernel.NewCategoryID(req.CategoryID)
	if _, err := s.categories.FindByID(ctx, catID); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, employerID, req.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	j := job.Job{
		ID:             kernel.NewJobID(uuid.NewString()),
		EmployerID:     employerID,
		CategoryID:     catID,
		Title:          req.Title,
		Slug:           slug,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: job.EmploymentType(req.EmploymentType),
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         job.StatusDraft,
		Deadline:       req.Deadline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Get returns a posting. Drafts are only visible to the owner and admins.
func (s *JobService) Get(ctx context.Context, id kernel.JobID, viewer *kernel.AuthContext) (*job.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status == job.StatusDraft && !s.canManage(j, viewer) {
		return nil, job.ErrNotFound()
	}
	return j, nil
}

// Update applies a partial update. Owner or admin only.
func (s *JobService) Update(ctx context.Context, id kernel.JobID, actor *kernel.AuthContext, req job.UpdateRequest) (*job.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(j, actor) {
		return nil, job.ErrNotOwner()
	}

	if req.CategoryID != nil {
		catID := kernel.NewCategoryID(*req.CategoryID)
		if _, err := s.categories.FindByID(ctx, catID); err != nil {
			return nil, err
		}
		j.CategoryID = catID
	}
	if req.Title != nil && *req.Title != j.Title {
		slug, err := s.uniqueSlug(ctx, j.EmployerID, *req.Title)
		if err != nil {
			return nil, err
		}
		j.Title = *req.Title
		j.Slug = slug
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.EmploymentType != nil {
		et := job.EmploymentType(*req.EmploymentType)
		if !et.Valid() {
			return nil, job.ErrInvalidType().WithDetail("employment_type", *req.EmploymentType)
		}
		j.EmploymentType = et
	}
	if req.SalaryMin != nil {
		j.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		j.SalaryMax = req.SalaryMax
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		return nil, job.ErrInvalidSalary()
	}
	if req.Deadline != nil {
		j.Deadline = req.Deadline
	}
	j.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, *j); err != nil {
		return nil, err
	}
	return j, nil
}

// Publish opens the posting for applications.
func (s *JobService) Publish(ctx context.Context, id kernel.JobID, actor *kernel.AuthContext) (*job.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(j, actor) {
		return nil, job.ErrNotOwner()
	}
	if err := j.Publish(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, *j); err != nil {
		return nil, err
	}
	s.metrics.JobsPublished.Inc()
	return j, nil
}

// Close stops the posting from accepting applications.
func (s *JobService) Close(ctx context.Context, id kernel.JobID, actor *kernel.AuthContext) (*job.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(j, actor) {
		return nil, job.ErrNotOwner()
	}
	if err := j.Close(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, *j); err != nil {
		return nil, err
	}
	return j, nil
}

// Delete removes a posting that never received applications. Postings with
// applications must be closed instead.
func (s *JobService) Delete(ctx context.Context, id kernel.JobID, actor *kernel.AuthContext) error {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(j, actor) {
		return job.ErrNotOwner()
	}

	apps, err := s.repo.CountApplications(ctx, id)
	if err != nil {
		return err
	}
	if apps > 0 {
		return job.ErrHasApplications().WithDetail("application_count", apps)
	}
	return s.repo.Delete(ctx, id)
}

// ListPublished is the public, filtered listing.
func (s *JobService) ListPublished(ctx context.Context, filters job.Filters, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	return s.repo.ListPublished(ctx, filters, opts.Normalize())
}

// ListByEmployer returns every posting of one employer, any status.
func (s *JobService) ListByEmployer(ctx context.Context, employerID kernel.UserID, opts kernel.PaginationOptions) (kernel.Paginated[job.Job], error) {
	return s.repo.ListByEmployer(ctx, employerID, opts.Normalize())
}

func (s *JobService) canManage(j *job.Job, actor *kernel.AuthContext) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || j.IsOwnedBy(actor.UserID)
}

// uniqueSlug derives a slug from title, suffixing it when the employer
// already uses it.
func (s *JobService) uniqueSlug(ctx context.Context, employerID kernel.UserID, title string) (string, error) {
	slug := category.Slugify(title)
	if slug == "" {
		slug = "job"
	}

	taken, err := s.repo.ExistsSlug(ctx, employerID, slug)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]), nil
}
