package access

import (
	"slices"
	"strings"
)

// Cache contexts a response may vary on.
const (
	ContextLanguages              = "languages:content"
	ContextURL                    = "url"
	ContextResourceVersion        = "url.query_args:resourceVersion"
	ContextUserRoles              = "user.roles"
	ContextUserRolesAuthenticated = "user.roles:authenticated"
)

// Cache tags invalidated by administrative changes.
const (
	TagSettings      = "config:gateway.settings"
	TagResourceTypes = "gateway_resource_types"
	TagPermissions   = "config:permissions"
)

// EntityTag returns the cache tag of one entity, e.g. "node:<uuid>".
func EntityTag(entityType, id string) string {
	return entityType + ":" + id
}

// Cacheability is an immutable set of cache contexts and tags. The zero value
// is empty and ready to use.
type Cacheability struct {
	contexts []string
	tags     []string
}

// NewCacheability returns the cacheability carrying contexts and tags.
func NewCacheability(contexts, tags []string) Cacheability {
	return Cacheability{contexts: union(nil, contexts), tags: union(nil, tags)}
}

// WithContexts returns a copy with contexts added.
func (c Cacheability) WithContexts(contexts ...string) Cacheability {
	return Cacheability{contexts: union(c.contexts, contexts), tags: c.tags}
}

// WithTags returns a copy with tags added.
func (c Cacheability) WithTags(tags ...string) Cacheability {
	return Cacheability{contexts: c.contexts, tags: union(c.tags, tags)}
}

// Merge returns the union of both.
func (c Cacheability) Merge(other Cacheability) Cacheability {
	return Cacheability{contexts: union(c.contexts, other.contexts), tags: union(c.tags, other.tags)}
}

// Contexts returns the sorted cache contexts.
func (c Cacheability) Contexts() []string {
	return slices.Clone(c.contexts)
}

// Tags returns the sorted cache tags.
func (c Cacheability) Tags() []string {
	return slices.Clone(c.tags)
}

// VariesByRoles reports whether a role context is present.
func (c Cacheability) VariesByRoles() bool {
	return slices.ContainsFunc(c.contexts, func(s string) bool {
		return s == ContextUserRoles || strings.HasPrefix(s, ContextUserRoles+":")
	})
}

// IsEmpty reports whether neither contexts nor tags are set.
func (c Cacheability) IsEmpty() bool {
	return len(c.contexts) == 0 && len(c.tags) == 0
}

func union(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	for _, s := range b {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
