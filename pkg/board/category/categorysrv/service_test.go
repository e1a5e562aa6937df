package categorysrv

import (
	"context"
	"errors"
	"testing"

	"github.com/openhire/openhire/pkg/board/category"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

type memoryRepo struct {
	byID     map[kernel.CategoryID]category.Category
	jobCount map[kernel.CategoryID]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byID:     make(map[kernel.CategoryID]category.Category),
		jobCount: make(map[kernel.CategoryID]int),
	}
}

func (r *memoryRepo) Save(_ context.Context, c category.Category) error {
	r.byID[c.ID] = c
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id kernel.CategoryID) (*category.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, category.ErrNotFound()
	}
	return &c, nil
}

func (r *memoryRepo) FindBySlug(_ context.Context, slug string) (*category.Category, error) {
	for _, c := range r.byID {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, category.ErrNotFound()
}

func (r *memoryRepo) List(_ context.Context) ([]category.Category, error) {
	out := make([]category.Category, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) Delete(_ context.Context, id kernel.CategoryID) error {
	delete(r.byID, id)
	return nil
}

func (r *memoryRepo) CountJobs(_ context.Context, id kernel.CategoryID) (int, error) {
	return r.jobCount[id], nil
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Engineering":            "engineering",
		"Sales & Marketing":      "sales-marketing",
		"  DevOps / SRE  ":       "devops-sre",
		"C++ Development":        "c-development",
		"Data Science (Remote!)": "data-science-remote",
	}
	for in, want := range cases {
		if got := category.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateDerivesSlug(t *testing.T) {
	svc := NewCategoryService(newMemoryRepo())

	c, err := svc.Create(context.Background(), category.CreateRequest{Name: "Sales & Marketing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Slug != "sales-marketing" {
		t.Errorf("slug = %q", c.Slug)
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc := NewCategoryService(newMemoryRepo())

	if _, err := svc.Create(context.Background(), category.CreateRequest{Name: "Engineering"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(context.Background(), category.CreateRequest{Name: "engineering"})
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != category.CodeDuplicate.Code {
		t.Fatalf("expected DUPLICATE, got %v", err)
	}
}

func TestUpdateRename(t *testing.T) {
	svc := NewCategoryService(newMemoryRepo())

	c, err := svc.Create(context.Background(), category.CreateRequest{Name: "Old Name"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "New Name"
	updated, err := svc.Update(context.Background(), c.ID, category.UpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "new-name" {
		t.Errorf("slug not re-derived: %q", updated.Slug)
	}

	// Renaming to the current name must not trip the duplicate check.
	if _, err := svc.Update(context.Background(), c.ID, category.UpdateRequest{Name: &name}); err != nil {
		t.Fatalf("self rename: %v", err)
	}
}

func TestDeleteWithJobs(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewCategoryService(repo)

	c, err := svc.Create(context.Background(), category.CreateRequest{Name: "Busy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.jobCount[c.ID] = 3

	err = svc.Delete(context.Background(), c.ID)
	var xerr *errx.Error
	if !errors.As(err, &xerr) || xerr.Code != category.CodeInUse.Code {
		t.Fatalf("expected IN_USE, got %v", err)
	}

	repo.jobCount[c.ID] = 0
	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), c.ID); err == nil {
		t.Error("category still present after delete")
	}
}
