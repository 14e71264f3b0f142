package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/access"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/routing"
	gatewayapi "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/pkg/gatewayapi"
)

const (
	componentName = "GW_DOC"

	// HeaderCacheContexts lists the cache contexts of a response.
	HeaderCacheContexts = "X-Gateway-Cache-Contexts"
	// HeaderCacheTags lists the cache tags of a response.
	HeaderCacheTags = "X-Gateway-Cache-Tags"
)

// GatewayAPIService is a service that implements the logic for the GatewayAPIServicer
// for one namespace. Every request reads one settings snapshot and evaluates
// each entity it serializes.
type GatewayAPIService struct {
	namespace     access.Namespace
	defaultLocale string
	catalog       resource.Catalog
	content       content.Store
	settings      policy.Store
	routes        *routing.Builder
	resolver      *access.VisibilityResolver
	evaluator     access.Evaluator
	projector     access.FieldProjector
}

// GatewayAPIServiceOptions wires the collaborators of a GatewayAPIService.
type GatewayAPIServiceOptions struct {
	Namespace     access.Namespace
	DefaultLocale string
	Catalog       resource.Catalog
	Content       content.Store
	Settings      policy.Store
	Routes        *routing.Builder
	Evaluator     access.Evaluator
	// Projector defaults to access.PolicyProjector.
	Projector access.FieldProjector
}

// NewGatewayAPIService creates a default api service
func NewGatewayAPIService(opts GatewayAPIServiceOptions) *GatewayAPIService {
	projector := opts.Projector
	if projector == nil {
		projector = access.PolicyProjector{}
	}
	return &GatewayAPIService{
		namespace:     opts.Namespace,
		defaultLocale: opts.DefaultLocale,
		catalog:       opts.Catalog,
		content:       opts.Content,
		settings:      opts.Settings,
		routes:        opts.Routes,
		resolver:      access.NewVisibilityResolver(opts.Catalog),
		evaluator:     opts.Evaluator,
		projector:     projector,
	}
}

// requestScope is everything one request decides against.
type requestScope struct {
	principal access.Principal
	locale    string
	settings  *policy.Config
	table     *routing.Table
	req       gatewayapi.DocumentRequest
}

func (s *GatewayAPIService) scope(ctx context.Context, req gatewayapi.DocumentRequest) (*requestScope, error) {
	cfg, err := policy.Snapshot(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	table, err := s.routes.Table(ctx)
	if err != nil {
		return nil, err
	}
	locale, ok := common.LocaleFromContext(ctx)
	if !ok {
		locale = s.defaultLocale
	}
	return &requestScope{
		principal: access.PrincipalFromContext(ctx),
		locale:    locale,
		settings:  cfg,
		table:     table,
		req:       req,
	}, nil
}

// GetEntryPoint - Lists the collections visible to the caller
func (s *GatewayAPIService) GetEntryPoint(ctx context.Context, req gatewayapi.DocumentRequest) (gatewayapi.ImplResponse, error) {
	sc, err := s.scope(ctx, req)
	if err != nil {
		return internalError("GetEntryPoint", err)
	}

	keys := sc.table.Keys()
	cache := access.NewCacheability(nil, []string{access.TagResourceTypes})
	if s.namespace == access.NamespaceGateway {
		keys = nil
		for _, k := range s.resolver.ResolveVisible(sc.principal, sc.locale, sc.settings) {
			if sc.table.IsRoutable(k) {
				keys = append(keys, k)
			}
		}
		cache = cache.Merge(access.VisibilityCacheability())
	}

	links := map[string]gatewayapi.Link{}
	if self, ok := sc.table.Path("", "", routing.KindEntryPoint, ""); ok {
		links["self"] = gatewayapi.Link{Href: req.BaseURL + self}
	}
	for _, k := range keys {
		if path, ok := sc.table.Path(k, "", routing.KindCollection, ""); ok {
			links[k.String()] = gatewayapi.Link{Href: req.BaseURL + path}
		}
	}
	doc := gatewayapi.NewDocument([]gatewayapi.ResourceObject{})
	doc.Links = links
	return respond(http.StatusOK, doc, cache), nil
}

// GetCollection - Returns the entities of one resource type the caller may see
func (s *GatewayAPIService) GetCollection(ctx context.Context, req gatewayapi.DocumentRequest) (gatewayapi.ImplResponse, error) {
	sc, err := s.scope(ctx, req)
	if err != nil {
		return internalError("GetCollection", err)
	}
	rt, ok := sc.table.Type(req.Key)
	if !ok {
		return notFound(access.Cacheability{}), common.NewErrNotFound("resource type " + req.Key.String())
	}
	if _, ok := sc.table.Lookup(req.Key, "", routing.KindCollection); !ok {
		return notFound(access.Cacheability{}), common.NewErrNotFound("collection " + req.Key.String())
	}

	cache := access.NewCacheability([]string{access.ContextURL}, []string{entityListTag(req.Key)})
	data := []gatewayapi.ResourceObject{}
	selfPath, _ := sc.table.Path(req.Key, "", routing.KindCollection, "")

	if s.namespace == access.NamespaceGateway && !s.resolver.IsVisible(sc.principal, sc.locale, sc.settings, req.Key) {
		cache = cache.Merge(access.VisibilityCacheability())
		doc := gatewayapi.NewDocument(data)
		doc.Links = map[string]gatewayapi.Link{"self": {Href: withQuery(req.BaseURL+selfPath, req.Query)}}
		return respond(http.StatusOK, doc, cache), nil
	}

	entities, err := s.content.List(ctx, req.Key)
	if err != nil {
		return internalError("GetCollection", err)
	}
	for _, e := range entities {
		obj, decision := s.render(sc, rt, e)
		cache = cache.Merge(decision.Cacheability())
		if obj != nil {
			data = append(data, *obj)
		}
	}

	doc := gatewayapi.NewDocument(data)
	doc.Links = map[string]gatewayapi.Link{"self": {Href: withQuery(req.BaseURL+selfPath, req.Query)}}
	return respond(http.StatusOK, doc, cache), nil
}

// GetIndividual - Returns one entity
func (s *GatewayAPIService) GetIndividual(ctx context.Context, req gatewayapi.DocumentRequest) (gatewayapi.ImplResponse, error) {
	sc, rt, e, resp, err := s.loadEntity(ctx, req, "GetIndividual")
	if e == nil {
		return resp, err
	}

	decision := s.evaluate(sc, e)
	if decision.IsDenied() {
		return forbidden(decision), nil
	}
	obj := s.resourceObject(sc, rt, e, decision)
	doc := gatewayapi.NewDocument(obj)
	doc.Links = map[string]gatewayapi.Link{"self": obj.Links["self"]}
	return respond(http.StatusOK, doc, decision.Cacheability()), nil
}

// GetRelationship - Returns the resource identifiers of a relationship field
func (s *GatewayAPIService) GetRelationship(ctx context.Context, req gatewayapi.DocumentRequest) (gatewayapi.ImplResponse, error) {
	sc, rt, e, decision, resp, err := s.loadRelationshipSource(ctx, req, "GetRelationship")
	if e == nil {
		return resp, err
	}

	rel := s.relationship(sc, rt, e, req.Field)
	doc := gatewayapi.NewDocument(rel.Data)
	doc.Links = rel.Links
	return respond(http.StatusOK, doc, decision.Cacheability()), nil
}

// GetRelated - Returns the entities a relationship field points to. Targets
// the caller may not see are left out.
func (s *GatewayAPIService) GetRelated(ctx context.Context, req gatewayapi.DocumentRequest) (gatewayapi.ImplResponse, error) {
	sc, rt, e, decision, resp, err := s.loadRelationshipSource(ctx, req, "GetRelated")
	if e == nil {
		return resp, err
	}
	relatedPath, ok := sc.table.Path(rt.Key, req.Field, routing.KindRelated, e.ID)
	if !ok {
		return notFound(decision.Cacheability()), common.NewErrNotFound("related route " + req.Field)
	}

	cache := decision.Cacheability()
	data := []gatewayapi.ResourceObject{}
	targets, err := s.content.LoadMany(ctx, s.routableTargets(sc, e.Relationships[req.Field]))
	if err != nil {
		return internalError("GetRelated", err)
	}
	for _, target := range targets {
		targetType, ok := sc.table.Type(target.Type)
		if !ok {
			continue
		}
		obj, d := s.render(sc, targetType, target)
		cache = cache.Merge(d.Cacheability())
		if obj != nil {
			data = append(data, *obj)
		}
	}

	doc := gatewayapi.NewDocument(data)
	doc.Links = map[string]gatewayapi.Link{"self": {Href: withQuery(req.BaseURL+relatedPath, req.Query)}}
	return respond(http.StatusOK, doc, cache), nil
}

func (s *GatewayAPIService) loadEntity(ctx context.Context, req gatewayapi.DocumentRequest, operation string) (*requestScope, resource.Type, *content.Entity, gatewayapi.ImplResponse, error) {
	sc, err := s.scope(ctx, req)
	if err != nil {
		resp, err := internalError(operation, err)
		return nil, resource.Type{}, nil, resp, err
	}
	rt, ok := sc.table.Type(req.Key)
	if !ok {
		return nil, rt, nil, notFound(access.Cacheability{}), common.NewErrNotFound("resource type " + req.Key.String())
	}
	if !rt.Versionable && req.Version.Kind != content.VersionDefault {
		return nil, rt, nil, badRequest(fmt.Sprintf("resource versioning is not supported for %s", rt.Key)), nil
	}

	e, err := s.content.Load(ctx, req.Key, req.ID, req.Version)
	if err != nil {
		if common.IsErrNotFound(err) {
			return nil, rt, nil, notFound(access.Cacheability{}), err
		}
		resp, err := internalError(operation, err)
		return nil, rt, nil, resp, err
	}
	return sc, rt, e.Translate(sc.locale), gatewayapi.ImplResponse{}, nil
}

func (s *GatewayAPIService) loadRelationshipSource(ctx context.Context, req gatewayapi.DocumentRequest, operation string) (*requestScope, resource.Type, *content.Entity, access.Decision, gatewayapi.ImplResponse, error) {
	sc, rt, e, resp, err := s.loadEntity(ctx, req, operation)
	if e == nil {
		return nil, rt, nil, access.Decision{}, resp, err
	}
	if !rt.IsRelationship(req.Field) {
		return nil, rt, nil, access.Decision{}, notFound(access.Cacheability{}), common.NewErrNotFound("relationship " + req.Field)
	}

	decision := s.evaluate(sc, e)
	switch {
	case decision.IsDenied():
		return nil, rt, nil, decision, forbidden(decision), nil
	case decision.IsLabelOnly():
		denied := access.Denied("only the label of this resource is accessible", decision.Cacheability())
		return nil, rt, nil, denied, forbidden(denied), nil
	}

	fields := s.projector.Project(rt, []string{req.Field}, sc.settings, s.namespace)
	if len(fields) == 0 {
		return nil, rt, nil, decision, notFound(decision.Cacheability()), common.NewErrNotFound("relationship " + req.Field)
	}
	return sc, rt, e, decision, gatewayapi.ImplResponse{}, nil
}

func (s *GatewayAPIService) evaluate(sc *requestScope, e *content.Entity) access.Decision {
	d := s.evaluator.Evaluate(e, access.OperationView, sc.principal, sc.settings, s.namespace)
	common.RecordAccessDecision(s.namespace.String(), d.Outcome().String())
	return d
}

// render translates and evaluates e and returns its resource object, or nil
// when the caller may not see it.
func (s *GatewayAPIService) render(sc *requestScope, rt resource.Type, e *content.Entity) (*gatewayapi.ResourceObject, access.Decision) {
	e = e.Translate(sc.locale)
	d := s.evaluate(sc, e)
	if d.IsDenied() {
		return nil, d
	}
	obj := s.resourceObject(sc, rt, e, d)
	return &obj, d
}

func (s *GatewayAPIService) resourceObject(sc *requestScope, rt resource.Type, e *content.Entity, d access.Decision) gatewayapi.ResourceObject {
	obj := gatewayapi.ResourceObject{
		Type:  rt.Key.String(),
		ID:    e.ID,
		Links: map[string]gatewayapi.Link{},
	}
	if self, ok := sc.table.Path(rt.Key, "", routing.KindIndividual, e.ID); ok {
		obj.Links["self"] = gatewayapi.Link{Href: versionedHref(sc.req.BaseURL+self, rt, e)}
		if rt.Versionable {
			if !e.IsDefaultRevision() {
				obj.Links["latest-version"] = gatewayapi.Link{Href: withVersion(sc.req.BaseURL+self, "rel:latest-version")}
			}
			if !e.IsLatestRevision() {
				obj.Links["working-copy"] = gatewayapi.Link{Href: withVersion(sc.req.BaseURL+self, "rel:working-copy")}
			}
		}
	}

	if d.IsLabelOnly() {
		obj.Attributes = map[string]interface{}{labelField(rt): e.Label}
		return obj
	}

	obj.Attributes = map[string]interface{}{}
	for _, field := range s.projector.Project(rt, sc.req.Fields[rt.Key], sc.settings, s.namespace) {
		if rt.IsRelationship(field) {
			if obj.Relationships == nil {
				obj.Relationships = map[string]gatewayapi.Relationship{}
			}
			obj.Relationships[field] = s.relationship(sc, rt, e, field)
			continue
		}
		if field == labelField(rt) {
			obj.Attributes[field] = e.Label
			continue
		}
		v, _ := e.Value(field)
		obj.Attributes[field] = v
	}
	if len(obj.Attributes) == 0 {
		obj.Attributes = nil
	}
	return obj
}

func (s *GatewayAPIService) relationship(sc *requestScope, rt resource.Type, e *content.Entity, field string) gatewayapi.Relationship {
	rel := gatewayapi.Relationship{Data: []gatewayapi.ResourceIdentifier{}, Links: map[string]gatewayapi.Link{}}
	for _, id := range s.routableTargets(sc, e.Relationships[field]) {
		rel.Data = append(rel.Data, gatewayapi.ResourceIdentifier{Type: id.Type.String(), ID: id.ID})
	}
	if path, ok := sc.table.Path(rt.Key, field, routing.KindRelationship, e.ID); ok {
		rel.Links["self"] = gatewayapi.Link{Href: sc.req.BaseURL + path}
	}
	if path, ok := sc.table.Path(rt.Key, field, routing.KindRelated, e.ID); ok {
		rel.Links["related"] = gatewayapi.Link{Href: sc.req.BaseURL + path}
	}
	return rel
}

func (s *GatewayAPIService) routableTargets(sc *requestScope, ids []content.Identifier) []content.Identifier {
	out := make([]content.Identifier, 0, len(ids))
	for _, id := range ids {
		if sc.table.IsRoutable(id.Type) {
			out = append(out, id)
		}
	}
	return out
}

func labelField(rt resource.Type) string {
	if rt.LabelField == "" {
		return "label"
	}
	return rt.LabelField
}

func entityListTag(key resource.Key) string {
	return key.EntityType() + "_list"
}

func versionedHref(href string, rt resource.Type, e *content.Entity) string {
	if !rt.Versionable || e.RevisionID == 0 {
		return href
	}
	return withVersion(href, "id:"+strconv.FormatInt(e.RevisionID, 10))
}

func withVersion(href, version string) string {
	return href + "?" + gatewayapi.VersionQueryParameter + "=" + url.QueryEscape(version)
}

func withQuery(href, query string) string {
	if query == "" {
		return href
	}
	return href + "?" + query
}

// CacheHeaders renders cacheability as response headers.
func CacheHeaders(c access.Cacheability) http.Header {
	h := http.Header{}
	if contexts := c.Contexts(); len(contexts) > 0 {
		h.Set(HeaderCacheContexts, strings.Join(contexts, " "))
	}
	if tags := c.Tags(); len(tags) > 0 {
		h.Set(HeaderCacheTags, strings.Join(tags, " "))
	}
	if c.VariesByRoles() {
		h.Set("Vary", "Authorization")
	}
	return h
}

func respond(code int, doc *gatewayapi.Document, c access.Cacheability) gatewayapi.ImplResponse {
	return gatewayapi.ImplResponse{Code: code, Body: doc, Headers: CacheHeaders(c)}
}

func notFound(c access.Cacheability) gatewayapi.ImplResponse {
	return gatewayapi.ImplResponse{Code: http.StatusNotFound, Headers: CacheHeaders(c)}
}

func badRequest(detail string) gatewayapi.ImplResponse {
	return gatewayapi.Response(http.StatusBadRequest, gatewayapi.ErrorDocument(gatewayapi.ErrorObject{
		Title:  http.StatusText(http.StatusBadRequest),
		Status: strconv.Itoa(http.StatusBadRequest),
		Detail: detail,
	}))
}

func forbidden(d access.Decision) gatewayapi.ImplResponse {
	doc := gatewayapi.ErrorDocument(gatewayapi.ErrorObject{
		Title:  http.StatusText(http.StatusForbidden),
		Status: strconv.Itoa(http.StatusForbidden),
		Detail: d.Message(),
		Source: map[string]string{"pointer": "/data"},
		Meta:   map[string]interface{}{"reason": d.Reason()},
	})
	return respond(http.StatusForbidden, doc, d.Cacheability())
}

func internalError(operation string, err error) (gatewayapi.ImplResponse, error) {
	log.Printf("📍 [%s] Error in %s: %v", componentName, operation, err)
	return gatewayapi.ImplResponse{Code: http.StatusInternalServerError}, err
}
