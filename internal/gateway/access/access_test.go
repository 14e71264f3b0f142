package access

import (
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

func testCatalog() *resource.StaticCatalog {
	return resource.NewStaticCatalog(
		resource.Type{Key: "node--article", Label: "Article", LabelField: "title",
			Fields: []string{"title", "body", "field_x", "field_tags"}, Locatable: true, Versionable: true, Mutable: true},
		resource.Type{Key: "node--page", Label: "Basic page", LabelField: "title",
			Fields: []string{"title", "body"}, Locatable: true, Versionable: true},
		resource.Type{Key: "node--internal_note", Label: "Internal note", LabelField: "title",
			Fields: []string{"title"}, Internal: true},
		resource.Type{Key: "taxonomy_term--tags", Label: "Tags", LabelField: "name",
			Fields: []string{"name"}, Locatable: true},
	)
}

// listCatalog returns its types unfiltered.
type listCatalog []resource.Type

func (c listCatalog) ListAll() []resource.Type { return c }

func (c listCatalog) Get(key resource.Key) (resource.Type, error) {
	for _, t := range c {
		if t.Key == key {
			return t, nil
		}
	}
	return resource.Type{}, common.NewErrNotFound(key.String())
}

// fakePerms allows the listed operations for every principal.
type fakePerms struct {
	allow        map[Operation]bool
	capabilities map[string]bool
}

func allowing(ops ...Operation) *fakePerms {
	f := &fakePerms{allow: map[Operation]bool{}, capabilities: map[string]bool{}}
	for _, op := range ops {
		f.allow[op] = true
	}
	return f
}

func (f *fakePerms) HasCapability(_ Principal, capability string) bool {
	return f.capabilities[capability]
}

func (f *fakePerms) EntityAccess(_ Principal, e *content.Entity, op Operation) AccessResult {
	cache := NewCacheability([]string{ContextUserRoles}, []string{EntityTag(e.Type.EntityType(), e.ID)})
	if f.allow[op] {
		return AccessResult{Allowed: true, Cacheability: cache}
	}
	return AccessResult{Reason: "missing '" + string(op) + "'", Cacheability: cache}
}

func article(revision int64, isDefault bool) *content.Entity {
	return &content.Entity{
		ID:              "4a0e5b8c-5b4f-4c39-9d0e-2c0f3c6a1f11",
		Type:            "node--article",
		Langcode:        "en",
		Label:           "Hello",
		Published:       true,
		RevisionID:      revision,
		DefaultRevision: isDefault,
		Attributes:      map[string]any{"title": "Hello", "body": "World"},
	}
}
