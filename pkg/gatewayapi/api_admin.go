package gatewayapi

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

const adminComponentName = "GW_ADMIN"

// maxAdminBodyBytes bounds settings request bodies.
const maxAdminBodyBytes = 1 << 20

// AdminAPIController binds http requests to an api service and writes the service results to the http response
type AdminAPIController struct {
	service      AdminAPIServicer
	errorHandler ErrorHandler
}

// AdminAPIOption for how the controller is set up.
type AdminAPIOption func(*AdminAPIController)

// WithAdminAPIErrorHandler inject ErrorHandler into controller
func WithAdminAPIErrorHandler(h ErrorHandler) AdminAPIOption {
	return func(c *AdminAPIController) {
		c.errorHandler = h
	}
}

// NewAdminAPIController creates a default api controller
func NewAdminAPIController(s AdminAPIServicer, opts ...AdminAPIOption) *AdminAPIController {
	controller := &AdminAPIController{
		service:      s,
		errorHandler: AdminErrorHandler,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Routes returns all the api routes for the AdminAPIController
func (c *AdminAPIController) Routes() Routes {
	return Routes{
		"GetSettings": Route{
			strings.ToUpper("Get"),
			"/settings",
			c.GetSettings,
		},
		"PutEnabledResourceTypes": Route{
			strings.ToUpper("Put"),
			"/settings/resource-types",
			c.PutEnabledResourceTypes,
		},
		"PutRoleResourceGrants": Route{
			strings.ToUpper("Put"),
			"/settings/role-grants",
			c.PutRoleResourceGrants,
		},
		"PutDisabledLanguages": Route{
			strings.ToUpper("Put"),
			"/settings/languages",
			c.PutDisabledLanguages,
		},
		"PutResourceDisabledLanguages": Route{
			strings.ToUpper("Put"),
			"/settings/resource-languages",
			c.PutResourceDisabledLanguages,
		},
		"PutResourceDisabledFields": Route{
			strings.ToUpper("Put"),
			"/settings/resource-fields",
			c.PutResourceDisabledFields,
		},
		"PutResourceTypeLanguages": Route{
			strings.ToUpper("Put"),
			"/settings/resource-types/{entityType}/{bundle}/languages",
			c.PutResourceTypeLanguages,
		},
		"PutResourceTypeFields": Route{
			strings.ToUpper("Put"),
			"/settings/resource-types/{entityType}/{bundle}/fields",
			c.PutResourceTypeFields,
		},
		"GetResourceTypes": Route{
			strings.ToUpper("Get"),
			"/resource-types",
			c.GetResourceTypes,
		},
		"GetPermissions": Route{
			strings.ToUpper("Get"),
			"/permissions",
			c.GetPermissions,
		},
		"PostRebuildRoutes": Route{
			strings.ToUpper("Post"),
			"/routes/rebuild",
			c.PostRebuildRoutes,
		},
	}
}

// GetSettings - Returns the stored gateway settings
func (c *AdminAPIController) GetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetSettings(r.Context())
	c.write(w, r, "GetSettings", result, err)
}

// PutEnabledResourceTypes - Replaces the set of enabled resource types
func (c *AdminAPIController) PutEnabledResourceTypes(w http.ResponseWriter, r *http.Request) {
	var body EnabledResourceTypes
	if !c.decode(w, r, "PutEnabledResourceTypes", &body) {
		return
	}
	if err := AssertEnabledResourceTypesRequired(body); err != nil {
		c.fail(w, r, err)
		return
	}
	result, err := c.service.PutEnabledResourceTypes(r.Context(), body)
	c.write(w, r, "PutEnabledResourceTypes", result, err)
}

// PutRoleResourceGrants - Replaces the role to resource type grants
func (c *AdminAPIController) PutRoleResourceGrants(w http.ResponseWriter, r *http.Request) {
	var body RoleResourceGrants
	if !c.decode(w, r, "PutRoleResourceGrants", &body) {
		return
	}
	if err := AssertRoleResourceGrantsRequired(body); err != nil {
		c.fail(w, r, err)
		return
	}
	result, err := c.service.PutRoleResourceGrants(r.Context(), body)
	c.write(w, r, "PutRoleResourceGrants", result, err)
}

// PutDisabledLanguages - Replaces the globally disabled languages
func (c *AdminAPIController) PutDisabledLanguages(w http.ResponseWriter, r *http.Request) {
	var body DisabledLanguages
	if !c.decode(w, r, "PutDisabledLanguages", &body) {
		return
	}
	result, err := c.service.PutDisabledLanguages(r.Context(), body)
	c.write(w, r, "PutDisabledLanguages", result, err)
}

// PutResourceDisabledLanguages - Replaces every per resource type language restriction
func (c *AdminAPIController) PutResourceDisabledLanguages(w http.ResponseWriter, r *http.Request) {
	var body ResourceDisabledLanguages
	if !c.decode(w, r, "PutResourceDisabledLanguages", &body) {
		return
	}
	result, err := c.service.PutResourceDisabledLanguages(r.Context(), body)
	c.write(w, r, "PutResourceDisabledLanguages", result, err)
}

// PutResourceDisabledFields - Replaces every per resource type field restriction
func (c *AdminAPIController) PutResourceDisabledFields(w http.ResponseWriter, r *http.Request) {
	var body ResourceDisabledFields
	if !c.decode(w, r, "PutResourceDisabledFields", &body) {
		return
	}
	result, err := c.service.PutResourceDisabledFields(r.Context(), body)
	c.write(w, r, "PutResourceDisabledFields", result, err)
}

// PutResourceTypeLanguages - Replaces the disabled languages of one resource type
func (c *AdminAPIController) PutResourceTypeLanguages(w http.ResponseWriter, r *http.Request) {
	key, ok := c.pathKey(w, r, "PutResourceTypeLanguages")
	if !ok {
		return
	}
	var body DisabledLanguages
	if !c.decode(w, r, "PutResourceTypeLanguages", &body) {
		return
	}
	result, err := c.service.PutResourceTypeLanguages(r.Context(), key, body)
	c.write(w, r, "PutResourceTypeLanguages", result, err)
}

// PutResourceTypeFields - Replaces the disabled fields of one resource type
func (c *AdminAPIController) PutResourceTypeFields(w http.ResponseWriter, r *http.Request) {
	key, ok := c.pathKey(w, r, "PutResourceTypeFields")
	if !ok {
		return
	}
	var body DisabledFields
	if !c.decode(w, r, "PutResourceTypeFields", &body) {
		return
	}
	result, err := c.service.PutResourceTypeFields(r.Context(), key, body)
	c.write(w, r, "PutResourceTypeFields", result, err)
}

// GetResourceTypes - Lists the catalog with the effective settings per type
func (c *AdminAPIController) GetResourceTypes(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetResourceTypes(r.Context())
	c.write(w, r, "GetResourceTypes", result, err)
}

// GetPermissions - Lists the synthetic view permissions
func (c *AdminAPIController) GetPermissions(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetPermissions(r.Context())
	c.write(w, r, "GetPermissions", result, err)
}

// PostRebuildRoutes - Rebuilds the route tables immediately
func (c *AdminAPIController) PostRebuildRoutes(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.PostRebuildRoutes(r.Context())
	c.write(w, r, "PostRebuildRoutes", result, err)
}

func (c *AdminAPIController) decode(w http.ResponseWriter, r *http.Request, operation string, v interface{}) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAdminBodyBytes))
	if err == nil {
		err = common.UnmarshalAndDisallowUnknownFields(data, v)
	}
	if err != nil {
		log.Printf("🧩 [%s] Error in %s: decode body: %v", adminComponentName, operation, err)
		c.fail(w, r, &ParsingError{Param: "RequestBody", Err: err})
		return false
	}
	return true
}

func (c *AdminAPIController) pathKey(w http.ResponseWriter, r *http.Request, operation string) (resource.Key, bool) {
	key, err := resource.ParseKey(chi.URLParam(r, "entityType") + resource.KeySeparator + chi.URLParam(r, "bundle"))
	if err != nil {
		log.Printf("🧩 [%s] Error in %s: resource type path: %v", adminComponentName, operation, err)
		c.fail(w, r, &ParsingError{Param: "resource type", Err: err})
		return "", false
	}
	return key, true
}

func (c *AdminAPIController) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.errorHandler(w, r, err, nil)
}

func (c *AdminAPIController) write(w http.ResponseWriter, r *http.Request, operation string, result ImplResponse, err error) {
	if err != nil {
		log.Printf("🧩 [%s] Error in %s: service failure: %v", adminComponentName, operation, err)
		c.errorHandler(w, r, err, &result)
		return
	}
	_ = EncodeImplResponse(result, w)
}
