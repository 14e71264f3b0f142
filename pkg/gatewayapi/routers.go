/*
 * BaSyx JSON:API Gateway
 *
 * Access controlled JSON:API document server with per role resource grants,
 * locale restrictions and field redaction.
 *
 * API version: 1.0.0
 */

package gatewayapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// MediaType is the JSON:API media type.
const MediaType = "application/vnd.api+json"

// Route defines the parameters for an API endpoint.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// Routes is a map of defined API endpoints.
type Routes map[string]Route

// Router defines the required methods for retrieving API routes.
type Router interface {
	Routes() Routes
}

// ImplResponse defines an implementation response with status code, body and
// extra response headers.
type ImplResponse struct {
	Code    int
	Body    interface{}
	Headers http.Header
}

// Response returns an ImplResponse without extra headers.
func Response(code int, body interface{}) ImplResponse {
	return ImplResponse{Code: code, Body: body}
}

// NewRouter creates a new chi router for any number of API routers.
func NewRouter(routers ...Router) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	for _, api := range routers {
		for _, route := range api.Routes() {
			var handler http.Handler = route.HandlerFunc
			router.Method(route.Method, route.Pattern, handler)
		}
	}

	return router
}

// EncodeJSONResponse writes i as JSON with the given status (200 when nil).
// Documents are written with the JSON:API media type. A nil body writes the
// status only.
func EncodeJSONResponse(i interface{}, status *int, w http.ResponseWriter) error {
	code := http.StatusOK
	if status != nil && *status != 0 {
		code = *status
	}
	if i == nil {
		w.WriteHeader(code)
		return nil
	}

	data, err := common.Marshal(i)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	switch i.(type) {
	case Document, *Document:
		w.Header().Set("Content-Type", MediaType)
	default:
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	}
	w.WriteHeader(code)
	_, err = w.Write(append(data, '\n'))
	return err
}

// EncodeImplResponse copies the response headers and encodes the body.
func EncodeImplResponse(result ImplResponse, w http.ResponseWriter) error {
	for name, values := range result.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	return EncodeJSONResponse(result.Body, &result.Code, w)
}
