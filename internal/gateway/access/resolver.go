package access

import (
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// VisibilityResolver decides which resource types are listed and routed.
type VisibilityResolver struct {
	catalog resource.Catalog
}

// NewVisibilityResolver returns a resolver over catalog.
func NewVisibilityResolver(catalog resource.Catalog) *VisibilityResolver {
	return &VisibilityResolver{catalog: catalog}
}

// ResolveVisible returns the keys the principal may see in the locale, in
// catalog order. A globally disabled locale hides the whole catalog.
func (r *VisibilityResolver) ResolveVisible(p Principal, locale string, cfg *policy.Config) []resource.Key {
	visible := []resource.Key{}
	if cfg.IsLocaleDisabled(locale) {
		return visible
	}
	for _, rt := range r.catalog.ListAll() {
		if !routable(rt, cfg) {
			continue
		}
		if cfg.IsLocaleDisabledFor(rt.Key, locale) {
			continue
		}
		if !HasResourceGrant(p, rt.Key, cfg) {
			continue
		}
		visible = append(visible, rt.Key)
	}
	return visible
}

// ResolveRoutable returns the keys that get routes. It depends on the
// settings only.
func (r *VisibilityResolver) ResolveRoutable(cfg *policy.Config) []resource.Key {
	keys := []resource.Key{}
	for _, rt := range r.catalog.ListAll() {
		if routable(rt, cfg) {
			keys = append(keys, rt.Key)
		}
	}
	return keys
}

// IsVisible reports whether key is among ResolveVisible.
func (r *VisibilityResolver) IsVisible(p Principal, locale string, cfg *policy.Config, key resource.Key) bool {
	for _, k := range r.ResolveVisible(p, locale, cfg) {
		if k == key {
			return true
		}
	}
	return false
}

// VisibilityCacheability is attached to every response derived from
// ResolveVisible.
func VisibilityCacheability() Cacheability {
	return NewCacheability(
		[]string{ContextUserRoles, ContextUserRolesAuthenticated, ContextLanguages},
		[]string{TagResourceTypes, TagSettings},
	)
}

func routable(rt resource.Type, cfg *policy.Config) bool {
	return !rt.Internal &&
		resource.IsAllowedKind(rt.Key.EntityType()) &&
		!cfg.IsResourceTypeDisabled(rt.Key)
}

// HasResourceGrant reports whether any role of the principal is granted the
// resource type. Admin roles are granted every type.
func HasResourceGrant(p Principal, key resource.Key, cfg *policy.Config) bool {
	for _, role := range p.Roles {
		if role.Admin || cfg.RoleGrants(role.ID, key) {
			return true
		}
	}
	return false
}
