// Package categorysrv implements category management. Writes are admin
// only, enforced at the route.
package categorysrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openhire/openhire/pkg/board/category"
	"github.com/openhire/openhire/pkg/kernel"
)

type CategoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create adds a category; the slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, req category.CreateRequest) (*category.Category, error) {
	slug := category.Slugify(req.Name)
	if slug == "" {
		return nil, category.ErrEmptySlug().WithDetail("name", req.Name)
	}

	if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, category.ErrDuplicate().WithDetail("slug", slug)
	}

	now := time.Now().UTC()
	c := category.Category{
		ID:          kernel.NewCategoryID(uuid.NewString()),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id kernel.CategoryID) (*category.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *CategoryService) List(ctx context.Context) ([]category.Category, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update; renaming re-derives the slug.
func (s *CategoryService) Update(ctx context.Context, id kernel.CategoryID, req category.UpdateRequest) (*category.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		slug := category.Slugify(*req.Name)
		if slug == "" {
			return nil, category.ErrEmptySlug().WithDetail("name", *req.Name)
		}
		if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil && existing.ID != id {
			return nil, category.ErrDuplicate().WithDetail("slug", slug)
		}
		c.Rename(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
		c.UpdatedAt = time.Now().UTC()
	}

	if err := s.repo.Save(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes an empty category. Categories with jobs are kept.
func (s *CategoryService) Delete(ctx context.Context, id kernel.CategoryID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	jobs, err := s.repo.CountJobs(ctx, id)
	if err != nil {
		return err
	}
	if jobs > 0 {
		return category.ErrInUse().WithDetail("job_count", jobs)
	}
	return s.repo.Delete(ctx, id)
}
