package gatewayapi

import (
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// EnabledResourceTypes is the body of PUT /admin/settings/resource-types.
// Every catalog type not listed is disabled.
type EnabledResourceTypes struct {
	Enabled []resource.Key `json:"enabled"`
}

// RoleResourceGrants is the body of PUT /admin/settings/role-grants.
type RoleResourceGrants struct {
	RoleResourceGrants map[string][]resource.Key `json:"roleResourceGrants"`
}

// DisabledLanguages is the body of the language settings endpoints.
type DisabledLanguages struct {
	DisabledLanguages []string `json:"disabledLanguages"`
}

// ResourceDisabledLanguages is the body of PUT /admin/settings/resource-languages.
type ResourceDisabledLanguages struct {
	ResourceDisabledLanguages map[resource.Key][]string `json:"resourceDisabledLanguages"`
}

// ResourceDisabledFields is the body of PUT /admin/settings/resource-fields.
type ResourceDisabledFields struct {
	ResourceDisabledFields map[resource.Key][]string `json:"resourceDisabledFields"`
}

// DisabledFields is the body of PUT /admin/settings/resource-types/{entityType}/{bundle}/fields.
type DisabledFields struct {
	DisabledFields []string `json:"disabledFields"`
}

// ResourceTypeLanguagesResult reports the stored per type locales and the
// locales already disabled globally.
type ResourceTypeLanguagesResult struct {
	ResourceType      resource.Key `json:"resourceType"`
	DisabledLanguages []string     `json:"disabledLanguages"`
	InheritedDisabled []string     `json:"inheritedDisabled"`
}

// ResourceTypeInfo describes one catalog type for the administrative API.
type ResourceTypeInfo struct {
	resource.Type
	Enabled           bool     `json:"enabled"`
	Routable          bool     `json:"routable"`
	GrantedRoles      []string `json:"grantedRoles"`
	DisabledLanguages []string `json:"disabledLanguages"`
	DisabledFields    []string `json:"disabledFields"`
}

// AssertRoleResourceGrantsRequired checks that the grants map is present.
func AssertRoleResourceGrantsRequired(obj RoleResourceGrants) error {
	if obj.RoleResourceGrants == nil {
		return &RequiredError{Field: "roleResourceGrants"}
	}
	return nil
}

// AssertEnabledResourceTypesRequired checks that the enabled list is present.
func AssertEnabledResourceTypesRequired(obj EnabledResourceTypes) error {
	if obj.Enabled == nil {
		return &RequiredError{Field: "enabled"}
	}
	return nil
}
