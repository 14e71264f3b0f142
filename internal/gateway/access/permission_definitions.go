package access

import (
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// PermissionDefinition describes one synthetic view permission.
type PermissionDefinition struct {
	Name         string       `json:"name"`
	Title        string       `json:"title"`
	ResourceType resource.Key `json:"resourceType"`
	Roles        []string     `json:"roles"`
}

// PermissionDefinitions lists the synthetic view permission of every catalog
// type together with the roles granted it by cfg.
func PermissionDefinitions(catalog resource.Catalog, namespaceName string, cfg *policy.Config) []PermissionDefinition {
	types := catalog.ListAll()
	defs := make([]PermissionDefinition, 0, len(types))
	for _, rt := range types {
		roles := cfg.GrantedRoles(rt.Key)
		if roles == nil {
			roles = []string{}
		}
		defs = append(defs, PermissionDefinition{
			Name:         SyntheticPermission(namespaceName, rt.Key),
			Title:        "View " + rt.Label,
			ResourceType: rt.Key,
			Roles:        roles,
		})
	}
	return defs
}
