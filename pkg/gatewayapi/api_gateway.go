package gatewayapi

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

const (
	componentName = "GW_DOC"
	// VersionQueryParameter selects a revision of a versionable resource.
	VersionQueryParameter = "resourceVersion"
)

// GatewayAPIController binds http requests to an api service and writes the service results to the http response
type GatewayAPIController struct {
	service      GatewayAPIServicer
	errorHandler ErrorHandler
}

// GatewayAPIOption for how the controller is set up.
type GatewayAPIOption func(*GatewayAPIController)

// WithGatewayAPIErrorHandler inject ErrorHandler into controller
func WithGatewayAPIErrorHandler(h ErrorHandler) GatewayAPIOption {
	return func(c *GatewayAPIController) {
		c.errorHandler = h
	}
}

// NewGatewayAPIController creates a default api controller
func NewGatewayAPIController(s GatewayAPIServicer, opts ...GatewayAPIOption) *GatewayAPIController {
	controller := &GatewayAPIController{
		service:      s,
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Routes returns all the api routes for the GatewayAPIController
func (c *GatewayAPIController) Routes() Routes {
	return Routes{
		"GetEntryPoint": Route{
			strings.ToUpper("Get"),
			"/",
			c.GetEntryPoint,
		},
		"GetCollection": Route{
			strings.ToUpper("Get"),
			"/{entityType}/{bundle}",
			c.GetCollection,
		},
		"GetIndividual": Route{
			strings.ToUpper("Get"),
			"/{entityType}/{bundle}/{id}",
			c.GetIndividual,
		},
		"GetRelationship": Route{
			strings.ToUpper("Get"),
			"/{entityType}/{bundle}/{id}/relationships/{field}",
			c.GetRelationship,
		},
		"GetRelated": Route{
			strings.ToUpper("Get"),
			"/{entityType}/{bundle}/{id}/{field}",
			c.GetRelated,
		},
	}
}

// GetEntryPoint - Lists the collections visible to the caller
func (c *GatewayAPIController) GetEntryPoint(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r, false)
	if err != nil {
		log.Printf("🧩 [%s] Error in GetEntryPoint: %v", componentName, err)
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetEntryPoint(r.Context(), req)
	c.write(w, r, "GetEntryPoint", result, err)
}

// GetCollection - Returns the entities of one resource type
func (c *GatewayAPIController) GetCollection(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r, true)
	if err != nil {
		log.Printf("🧩 [%s] Error in GetCollection: %v", componentName, err)
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetCollection(r.Context(), req)
	c.write(w, r, "GetCollection", result, err)
}

// GetIndividual - Returns one entity
func (c *GatewayAPIController) GetIndividual(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r, true)
	if err != nil {
		log.Printf("🧩 [%s] Error in GetIndividual: %v", componentName, err)
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetIndividual(r.Context(), req)
	c.write(w, r, "GetIndividual", result, err)
}

// GetRelationship - Returns the resource identifiers of a relationship field
func (c *GatewayAPIController) GetRelationship(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r, true)
	if err != nil {
		log.Printf("🧩 [%s] Error in GetRelationship: %v", componentName, err)
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetRelationship(r.Context(), req)
	c.write(w, r, "GetRelationship", result, err)
}

// GetRelated - Returns the entities referenced by a relationship field
func (c *GatewayAPIController) GetRelated(w http.ResponseWriter, r *http.Request) {
	req, err := c.parseRequest(r, true)
	if err != nil {
		log.Printf("🧩 [%s] Error in GetRelated: %v", componentName, err)
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetRelated(r.Context(), req)
	c.write(w, r, "GetRelated", result, err)
}

func (c *GatewayAPIController) write(w http.ResponseWriter, r *http.Request, operation string, result ImplResponse, err error) {
	if err != nil {
		if !common.IsErrNotFound(err) {
			log.Printf("🧩 [%s] Error in %s: service failure (path=%q): %v", componentName, operation, r.URL.Path, err)
		}
		c.errorHandler(w, r, err, &result)
		return
	}
	_ = EncodeImplResponse(result, w)
}

func (c *GatewayAPIController) parseRequest(r *http.Request, withType bool) (DocumentRequest, error) {
	req := DocumentRequest{
		ID:      chi.URLParam(r, "id"),
		Field:   chi.URLParam(r, "field"),
		BaseURL: requestBaseURL(r),
		Query:   r.URL.RawQuery,
	}
	if withType {
		key, err := resource.ParseKey(chi.URLParam(r, "entityType") + resource.KeySeparator + chi.URLParam(r, "bundle"))
		if err != nil {
			return req, &ParsingError{Param: "resource type", Err: err}
		}
		req.Key = key
	}

	query := r.URL.Query()
	version, err := content.ParseVersion(query.Get(VersionQueryParameter))
	if err != nil {
		return req, &ParsingError{Param: VersionQueryParameter, Err: err}
	}
	req.Version = version

	fields, err := parseSparseFieldsets(query)
	if err != nil {
		return req, &ParsingError{Param: "fields", Err: err}
	}
	req.Fields = fields
	return req, nil
}

// parseSparseFieldsets reads fields[<type>]=a,b parameters.
func parseSparseFieldsets(query url.Values) (map[resource.Key][]string, error) {
	fields := map[resource.Key][]string{}
	for name, values := range query {
		if !strings.HasPrefix(name, "fields[") || !strings.HasSuffix(name, "]") {
			continue
		}
		key, err := resource.ParseKey(strings.TrimSuffix(strings.TrimPrefix(name, "fields["), "]"))
		if err != nil {
			return nil, err
		}
		var list []string
		for _, v := range values {
			for _, f := range strings.Split(v, ",") {
				if f = strings.TrimSpace(f); f != "" {
					list = append(list, f)
				}
			}
		}
		fields[key] = list
	}
	return fields, nil
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + common.LocalePrefixFromContext(r.Context())
}
