// Package category models the job categories of the board.
package category

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// Category groups job postings. Slugs are derived from the name and are the
// public identifier in listing URLs.
type Category struct {
	ID          kernel.CategoryID `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Slug        string            `db:"slug" json:"slug"`
	Description string            `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a name: lowercased, runs of non
// alphanumerics collapsed to single dashes.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Rename updates the name and re-derives the slug.
func (c *Category) Rename(name string) {
	c.Name = name
	c.Slug = Slugify(name)
	c.UpdatedAt = time.Now().UTC()
}

// CreateRequest creates a category. Admin only.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateRequest is a partial category update. Admin only.
type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

var ErrRegistry = errx.NewRegistry("CATEGORY")

var (
	CodeNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Category not found")
	CodeDuplicate = ErrRegistry.Register("DUPLICATE", errx.TypeConflict, http.StatusConflict, "Category name or slug already exists")
	CodeInUse     = ErrRegistry.Register("IN_USE", errx.TypeConflict, http.StatusConflict, "Category has jobs and cannot be deleted")
	CodeEmptySlug = ErrRegistry.Register("EMPTY_SLUG", errx.TypeValidation, http.StatusBadRequest, "Category name yields an empty slug")
)

func ErrNotFound() *errx.Error  { return ErrRegistry.New(CodeNotFound) }
func ErrDuplicate() *errx.Error { return ErrRegistry.New(CodeDuplicate) }
func ErrInUse() *errx.Error     { return ErrRegistry.New(CodeInUse) }
func ErrEmptySlug() *errx.Error { return ErrRegistry.New(CodeEmptySlug) }
