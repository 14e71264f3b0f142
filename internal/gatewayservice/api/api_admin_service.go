package api

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/access"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/routing"
	gatewayapi "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/pkg/gatewayapi"
)

const adminComponentName = "GW_ADMIN"

// AdminAPIService is a service that implements the logic for the AdminAPIServicer
type AdminAPIService struct {
	admin         *policy.Administrator
	catalog       resource.Catalog
	routes        routing.Builders
	namespaceName string
}

// NewAdminAPIService creates a default api service. routes are rebuilt by
// PostRebuildRoutes; the first one is reported by GetResourceTypes.
func NewAdminAPIService(admin *policy.Administrator, catalog resource.Catalog, namespaceName string, routes ...*routing.Builder) *AdminAPIService {
	return &AdminAPIService{
		admin:         admin,
		catalog:       catalog,
		routes:        routes,
		namespaceName: namespaceName,
	}
}

// GetSettings - Returns the settings document
func (s *AdminAPIService) GetSettings(ctx context.Context) (gatewayapi.ImplResponse, error) {
	cfg, err := s.admin.Settings(ctx)
	if err != nil {
		return s.failure("GetSettings", err)
	}
	return gatewayapi.Response(http.StatusOK, cfg), nil
}

// PutEnabledResourceTypes - Replaces the enabled resource types
func (s *AdminAPIService) PutEnabledResourceTypes(ctx context.Context, body gatewayapi.EnabledResourceTypes) (gatewayapi.ImplResponse, error) {
	for _, k := range body.Enabled {
		if _, err := s.catalog.Get(k); err != nil {
			return s.failure("PutEnabledResourceTypes", common.NewErrBadRequest("unknown resource type "+k.String()))
		}
	}
	return s.saved(ctx, "PutEnabledResourceTypes", s.admin.SetEnabledResourceTypes(ctx, body.Enabled))
}

// PutRoleResourceGrants - Replaces the role grants
func (s *AdminAPIService) PutRoleResourceGrants(ctx context.Context, body gatewayapi.RoleResourceGrants) (gatewayapi.ImplResponse, error) {
	return s.saved(ctx, "PutRoleResourceGrants", s.admin.SetRoleResourceGrants(ctx, body.RoleResourceGrants))
}

// PutDisabledLanguages - Replaces the globally disabled languages
func (s *AdminAPIService) PutDisabledLanguages(ctx context.Context, body gatewayapi.DisabledLanguages) (gatewayapi.ImplResponse, error) {
	return s.saved(ctx, "PutDisabledLanguages", s.admin.SetDisabledLocales(ctx, body.DisabledLanguages))
}

// PutResourceDisabledLanguages - Replaces the disabled languages of every resource type
func (s *AdminAPIService) PutResourceDisabledLanguages(ctx context.Context, body gatewayapi.ResourceDisabledLanguages) (gatewayapi.ImplResponse, error) {
	return s.saved(ctx, "PutResourceDisabledLanguages", s.admin.SetPerResourceDisabledLocales(ctx, body.ResourceDisabledLanguages))
}

// PutResourceDisabledFields - Replaces the disabled fields of every resource type
func (s *AdminAPIService) PutResourceDisabledFields(ctx context.Context, body gatewayapi.ResourceDisabledFields) (gatewayapi.ImplResponse, error) {
	return s.saved(ctx, "PutResourceDisabledFields", s.admin.SetPerResourceDisabledFields(ctx, body.ResourceDisabledFields))
}

// PutResourceTypeLanguages - Replaces the disabled languages of one resource type
func (s *AdminAPIService) PutResourceTypeLanguages(ctx context.Context, key resource.Key, body gatewayapi.DisabledLanguages) (gatewayapi.ImplResponse, error) {
	inherited, err := s.admin.SetResourceDisabledLocales(ctx, key, body.DisabledLanguages)
	if err != nil {
		return s.failure("PutResourceTypeLanguages", err)
	}
	if inherited == nil {
		inherited = []string{}
	}
	stored := common.UniqueSorted(body.DisabledLanguages)
	if stored == nil {
		stored = []string{}
	}
	return gatewayapi.Response(http.StatusOK, gatewayapi.ResourceTypeLanguagesResult{
		ResourceType:      key,
		DisabledLanguages: stored,
		InheritedDisabled: inherited,
	}), nil
}

// PutResourceTypeFields - Replaces the disabled fields of one resource type
func (s *AdminAPIService) PutResourceTypeFields(ctx context.Context, key resource.Key, body gatewayapi.DisabledFields) (gatewayapi.ImplResponse, error) {
	return s.saved(ctx, "PutResourceTypeFields", s.admin.SetResourceDisabledFields(ctx, key, body.DisabledFields))
}

// GetResourceTypes - Lists the catalog with the settings applied to each type
func (s *AdminAPIService) GetResourceTypes(ctx context.Context) (gatewayapi.ImplResponse, error) {
	cfg, err := s.admin.Settings(ctx)
	if err != nil {
		return s.failure("GetResourceTypes", err)
	}
	var table *routing.Table
	if len(s.routes) > 0 {
		if table, err = s.routes[0].Table(ctx); err != nil {
			return s.failure("GetResourceTypes", err)
		}
	}

	types := s.catalog.ListAll()
	res := make([]gatewayapi.ResourceTypeInfo, 0, len(types))
	for _, rt := range types {
		info := gatewayapi.ResourceTypeInfo{
			Type:              rt,
			Enabled:           !cfg.IsResourceTypeDisabled(rt.Key),
			GrantedRoles:      nonNil(cfg.GrantedRoles(rt.Key)),
			DisabledLanguages: nonNil(cfg.DisabledLocalesFor(rt.Key)),
			DisabledFields:    nonNil(cfg.DisabledFieldsFor(rt.Key)),
		}
		if table != nil {
			info.Routable = table.IsRoutable(rt.Key)
		}
		res = append(res, info)
	}
	return gatewayapi.Response(http.StatusOK, res), nil
}

// GetPermissions - Lists the synthetic view permissions
func (s *AdminAPIService) GetPermissions(ctx context.Context) (gatewayapi.ImplResponse, error) {
	cfg, err := s.admin.Settings(ctx)
	if err != nil {
		return s.failure("GetPermissions", err)
	}
	return gatewayapi.Response(http.StatusOK, access.PermissionDefinitions(s.catalog, s.namespaceName, cfg)), nil
}

// PostRebuildRoutes - Rereads the settings and rebuilds the route tables now
func (s *AdminAPIService) PostRebuildRoutes(ctx context.Context) (gatewayapi.ImplResponse, error) {
	s.admin.Reload()
	if err := s.routes.Rebuild(ctx); err != nil {
		return s.failure("PostRebuildRoutes", err)
	}
	return gatewayapi.Response(http.StatusNoContent, nil), nil
}

func (s *AdminAPIService) saved(ctx context.Context, operation string, err error) (gatewayapi.ImplResponse, error) {
	if err != nil {
		return s.failure(operation, err)
	}
	return s.GetSettings(ctx)
}

func (s *AdminAPIService) failure(operation string, err error) (gatewayapi.ImplResponse, error) {
	status := common.StatusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("📍 [%s] Error in %s: %v", adminComponentName, operation, err)
	}
	resp := common.NewErrorResponse(err, status, adminComponentName, operation, strconv.Itoa(status))
	return gatewayapi.Response(resp.Code, resp.Body), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
