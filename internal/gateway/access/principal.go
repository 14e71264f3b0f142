package access

import (
	"context"
	"slices"
)

// Role is one role held by a principal.
type Role struct {
	ID    string `json:"id"`
	Admin bool   `json:"admin"`
}

// Principal is the caller of a request.
type Principal struct {
	Roles     []Role `json:"roles"`
	Anonymous bool   `json:"anonymous"`
}

// NewPrincipal returns an authenticated principal holding roles.
func NewPrincipal(roles ...Role) Principal {
	return Principal{Roles: roles}
}

// AnonymousPrincipal returns the principal used for requests without
// credentials.
func AnonymousPrincipal(role string) Principal {
	return Principal{Roles: []Role{{ID: role}}, Anonymous: true}
}

// RoleIDs returns the role ids in the order they were assigned.
func (p Principal) RoleIDs() []string {
	ids := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// HasRole reports whether the principal holds the role.
func (p Principal) HasRole(id string) bool {
	return slices.ContainsFunc(p.Roles, func(r Role) bool { return r.ID == id })
}

// IsAdmin reports whether any role of the principal is an admin role.
func (p Principal) IsAdmin() bool {
	return slices.ContainsFunc(p.Roles, func(r Role) bool { return r.Admin })
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal. A
// context without one yields an anonymous principal with no roles.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Principal{Anonymous: true}
}
