package gatewayapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// stubAdmin records decoded bodies and echoes them back.
type stubAdmin struct {
	calls []string
	key   resource.Key
}

func (s *stubAdmin) ok(op string, body interface{}) (ImplResponse, error) {
	s.calls = append(s.calls, op)
	return Response(http.StatusOK, body), nil
}

func (s *stubAdmin) GetSettings(context.Context) (ImplResponse, error) {
	return s.ok("GetSettings", map[string]string{})
}

func (s *stubAdmin) PutEnabledResourceTypes(_ context.Context, b EnabledResourceTypes) (ImplResponse, error) {
	return s.ok("PutEnabledResourceTypes", b)
}

func (s *stubAdmin) PutRoleResourceGrants(_ context.Context, b RoleResourceGrants) (ImplResponse, error) {
	return s.ok("PutRoleResourceGrants", b)
}

func (s *stubAdmin) PutDisabledLanguages(_ context.Context, b DisabledLanguages) (ImplResponse, error) {
	return s.ok("PutDisabledLanguages", b)
}

func (s *stubAdmin) PutResourceDisabledLanguages(_ context.Context, b ResourceDisabledLanguages) (ImplResponse, error) {
	return s.ok("PutResourceDisabledLanguages", b)
}

func (s *stubAdmin) PutResourceDisabledFields(_ context.Context, b ResourceDisabledFields) (ImplResponse, error) {
	return s.ok("PutResourceDisabledFields", b)
}

func (s *stubAdmin) PutResourceTypeLanguages(_ context.Context, key resource.Key, b DisabledLanguages) (ImplResponse, error) {
	s.key = key
	return s.ok("PutResourceTypeLanguages", b)
}

func (s *stubAdmin) PutResourceTypeFields(_ context.Context, key resource.Key, b DisabledFields) (ImplResponse, error) {
	s.key = key
	return s.ok("PutResourceTypeFields", b)
}

func (s *stubAdmin) GetResourceTypes(context.Context) (ImplResponse, error) {
	return s.ok("GetResourceTypes", []ResourceTypeInfo{})
}

func (s *stubAdmin) GetPermissions(context.Context) (ImplResponse, error) {
	return s.ok("GetPermissions", []string{})
}

func (s *stubAdmin) PostRebuildRoutes(context.Context) (ImplResponse, error) {
	s.calls = append(s.calls, "PostRebuildRoutes")
	return Response(http.StatusNoContent, nil), nil
}

func serveAdmin(svc AdminAPIServicer, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter(NewAdminAPIController(svc)).ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestAdminControllerRoutes(t *testing.T) {
	svc := &stubAdmin{}
	for _, tc := range []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/settings", "", http.StatusOK},
		{http.MethodPut, "/settings/resource-types", `{"enabled":["node--article"]}`, http.StatusOK},
		{http.MethodPut, "/settings/role-grants", `{"roleResourceGrants":{}}`, http.StatusOK},
		{http.MethodPut, "/settings/languages", `{"disabledLanguages":["de"]}`, http.StatusOK},
		{http.MethodPut, "/settings/resource-languages", `{"resourceDisabledLanguages":{}}`, http.StatusOK},
		{http.MethodPut, "/settings/resource-fields", `{"resourceDisabledFields":{}}`, http.StatusOK},
		{http.MethodPut, "/settings/resource-types/node/page/languages", `{"disabledLanguages":[]}`, http.StatusOK},
		{http.MethodPut, "/settings/resource-types/node/page/fields", `{"disabledFields":["body"]}`, http.StatusOK},
		{http.MethodGet, "/resource-types", "", http.StatusOK},
		{http.MethodGet, "/permissions", "", http.StatusOK},
		{http.MethodPost, "/routes/rebuild", "", http.StatusNoContent},
	} {
		rec := serveAdmin(svc, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}
	assert.Len(t, svc.calls, 11)
	assert.Equal(t, resource.Key("node--page"), svc.key)
}

func TestAdminControllerRejectsBodies(t *testing.T) {
	svc := &stubAdmin{}
	for _, tc := range []struct {
		name, path, body string
		want             int
	}{
		{"malformed", "/settings/languages", `{"disabledLanguages":`, http.StatusBadRequest},
		{"unknown field", "/settings/languages", `{"languages":["de"]}`, http.StatusBadRequest},
		{"missing enabled", "/settings/resource-types", `{}`, http.StatusUnprocessableEntity},
		{"missing grants", "/settings/role-grants", `{}`, http.StatusUnprocessableEntity},
	} {
		rec := serveAdmin(svc, http.MethodPut, tc.path, tc.body)
		assert.Equal(t, tc.want, rec.Code, tc.name)

		var msgs []common.ErrorHandler
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs), tc.name)
		require.Len(t, msgs, 1, tc.name)
		assert.Equal(t, "Error", msgs[0].MessageType, tc.name)
	}
	assert.Empty(t, svc.calls)
}
