package kernel

// Role is a user's coarse permission class. Fine-grained checks go through
// scopes; the role only decides which scopes a user is granted at login.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// ScopesFor returns the scopes granted to a role. Admin gets the wildcard.
func ScopesFor(role Role) []string {
	switch role {
	case RoleAdmin:
		return []string{"*"}
	case RoleEmployer:
		return []string{"jobs:*", "applications:read", "applications:review", "categories:read"}
	case RoleCandidate:
		return []string{"jobs:read", "applications:apply", "applications:read", "applications:withdraw", "categories:read"}
	default:
		return []string{}
	}
}

// AuthContext is the authenticated identity injected into each request.
type AuthContext struct {
	UserID UserID   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Role   Role     `json:"role"`
	Scopes []string `json:"scopes"`
}

// IsValid reports whether the context identifies a user.
func (ac *AuthContext) IsValid() bool {
	return !ac.UserID.IsEmpty() && ac.Role.Valid()
}

// HasScope reports whether the context grants scope. A stored scope of "*"
// matches everything; "jobs:*" matches any scope under the "jobs" prefix.
func (ac *AuthContext) HasScope(scope string) bool {
	for _, s := range ac.Scopes {
		if s == scope || s == "*" {
			return true
		}
		if len(s) > 2 && s[len(s)-2:] == ":*" {
			prefix := s[:len(s)-2]
			if len(scope) > len(prefix) && scope[:len(prefix)] == prefix && scope[len(prefix)] == ':' {
				return true
			}
		}
	}
	return false
}

// HasAnyScope reports whether any of the given scopes is granted.
func (ac *AuthContext) HasAnyScope(scopes ...string) bool {
	for _, scope := range scopes {
		if ac.HasScope(scope) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the context carries admin privileges.
func (ac *AuthContext) IsAdmin() bool {
	return ac.Role == RoleAdmin || ac.HasScope("*")
}

// ContextKey is the type for values stored on a request context.
type ContextKey string

const (
	AuthContextKey ContextKey = "auth_context"
	RequestIDKey   ContextKey = "request_id"
)
