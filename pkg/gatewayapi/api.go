package gatewayapi

import (
	"context"
	"net/http"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// DocumentRequest carries the parsed parameters of a document request.
type DocumentRequest struct {
	Key     resource.Key
	ID      string
	Field   string
	Version content.Version
	// Fields holds the sparse fieldsets, fields[<type>]=a,b.
	Fields map[resource.Key][]string
	// BaseURL is scheme, host and locale prefix of the request. Route paths
	// are appended to it when links are built.
	BaseURL string
	// Query is the raw query string, repeated in self links.
	Query string
}

// GatewayAPIRouter defines the required methods for binding the api requests to a responses for the GatewayAPI
// The GatewayAPIRouter implementation should parse necessary information from the http request,
// pass the data to a GatewayAPIServicer to perform the required actions, then write the service results to the http response.
type GatewayAPIRouter interface {
	GetEntryPoint(http.ResponseWriter, *http.Request)
	GetCollection(http.ResponseWriter, *http.Request)
	GetIndividual(http.ResponseWriter, *http.Request)
	GetRelationship(http.ResponseWriter, *http.Request)
	GetRelated(http.ResponseWriter, *http.Request)
}

// AdminAPIRouter defines the required methods for binding the api requests to a responses for the AdminAPI
type AdminAPIRouter interface {
	GetSettings(http.ResponseWriter, *http.Request)
	PutEnabledResourceTypes(http.ResponseWriter, *http.Request)
	PutRoleResourceGrants(http.ResponseWriter, *http.Request)
	PutDisabledLanguages(http.ResponseWriter, *http.Request)
	PutResourceDisabledLanguages(http.ResponseWriter, *http.Request)
	PutResourceDisabledFields(http.ResponseWriter, *http.Request)
	PutResourceTypeLanguages(http.ResponseWriter, *http.Request)
	PutResourceTypeFields(http.ResponseWriter, *http.Request)
	GetResourceTypes(http.ResponseWriter, *http.Request)
	GetPermissions(http.ResponseWriter, *http.Request)
	PostRebuildRoutes(http.ResponseWriter, *http.Request)
}

// GatewayAPIServicer defines the api actions for the GatewayAPI service
type GatewayAPIServicer interface {
	GetEntryPoint(context.Context, DocumentRequest) (ImplResponse, error)
	GetCollection(context.Context, DocumentRequest) (ImplResponse, error)
	GetIndividual(context.Context, DocumentRequest) (ImplResponse, error)
	GetRelationship(context.Context, DocumentRequest) (ImplResponse, error)
	GetRelated(context.Context, DocumentRequest) (ImplResponse, error)
}

// AdminAPIServicer defines the api actions for the AdminAPI service
type AdminAPIServicer interface {
	GetSettings(context.Context) (ImplResponse, error)
	PutEnabledResourceTypes(context.Context, EnabledResourceTypes) (ImplResponse, error)
	PutRoleResourceGrants(context.Context, RoleResourceGrants) (ImplResponse, error)
	PutDisabledLanguages(context.Context, DisabledLanguages) (ImplResponse, error)
	PutResourceDisabledLanguages(context.Context, ResourceDisabledLanguages) (ImplResponse, error)
	PutResourceDisabledFields(context.Context, ResourceDisabledFields) (ImplResponse, error)
	PutResourceTypeLanguages(context.Context, resource.Key, DisabledLanguages) (ImplResponse, error)
	PutResourceTypeFields(context.Context, resource.Key, DisabledFields) (ImplResponse, error)
	GetResourceTypes(context.Context) (ImplResponse, error)
	GetPermissions(context.Context) (ImplResponse, error)
	PostRebuildRoutes(context.Context) (ImplResponse, error)
}
