package kernel_test

import (
	"testing"

	"github.com/openhire/openhire/pkg/kernel"
)

func TestHasScopeWildcard(t *testing.T) {
	ac := &kernel.AuthContext{
		UserID: "u1",
		Role:   kernel.RoleAdmin,
		Scopes: []string{"*"},
	}
	for _, scope := range []string{"jobs:write", "applications:review", "anything:at:all"} {
		if !ac.HasScope(scope) {
			t.Errorf("wildcard should grant %q", scope)
		}
	}
}

func TestHasScopePrefixWildcard(t *testing.T) {
	ac := &kernel.AuthContext{
		UserID: "u2",
		Role:   kernel.RoleEmployer,
		Scopes: []string{"jobs:*", "applications:review"},
	}

	if !ac.HasScope("jobs:write") {
		t.Error("jobs:* should grant jobs:write")
	}
	if !ac.HasScope("jobs:read") {
		t.Error("jobs:* should grant jobs:read")
	}
	if !ac.HasScope("applications:review") {
		t.Error("exact scope should match")
	}
	if ac.HasScope("applications:apply") {
		t.Error("applications:apply should not be granted")
	}
	if ac.HasScope("jobsmore:read") {
		t.Error("prefix wildcard must respect the colon boundary")
	}
}

func TestScopesForRoles(t *testing.T) {
	candidate := &kernel.AuthContext{
		UserID: "u3",
		Role:   kernel.RoleCandidate,
		Scopes: kernel.ScopesFor(kernel.RoleCandidate),
	}
	if !candidate.HasScope("applications:apply") {
		t.Error("candidate should be able to apply")
	}
	if candidate.HasScope("applications:review") {
		t.Error("candidate must not review applications")
	}
	if candidate.IsAdmin() {
		t.Error("candidate is not admin")
	}

	admin := &kernel.AuthContext{
		UserID: "u4",
		Role:   kernel.RoleAdmin,
		Scopes: kernel.ScopesFor(kernel.RoleAdmin),
	}
	if !admin.IsAdmin() {
		t.Error("admin role should be admin")
	}
}

func TestRoleValid(t *testing.T) {
	if !kernel.RoleEmployer.Valid() {
		t.Error("employer is a valid role")
	}
	if kernel.Role("superuser").Valid() {
		t.Error("unknown role must be invalid")
	}
}

func TestPaginationNormalize(t *testing.T) {
	o := kernel.PaginationOptions{Page: 0, PageSize: 500}.Normalize()
	if o.Page != 1 || o.PageSize != 100 {
		t.Errorf("expected clamped options, got %+v", o)
	}
	if o.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", o.Offset())
	}

	o = kernel.PaginationOptions{Page: 3, PageSize: 25}.Normalize()
	if o.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", o.Offset())
	}
}

func TestNewPaginated(t *testing.T) {
	p := kernel.NewPaginated([]int{1, 2, 3}, 1, 3, 7)
	if p.Page.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", p.Page.Pages)
	}
	if !p.HasNext() || p.HasPrevious() {
		t.Error("first of three pages should have next but not previous")
	}
	if p.Empty {
		t.Error("result is not empty")
	}
}
