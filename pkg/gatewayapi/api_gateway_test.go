package gatewayapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// recordingService remembers the last request and answers with a fixed result.
type recordingService struct {
	last   DocumentRequest
	result ImplResponse
	err    error
}

func (s *recordingService) answer(req DocumentRequest) (ImplResponse, error) {
	s.last = req
	return s.result, s.err
}

func (s *recordingService) GetEntryPoint(_ context.Context, req DocumentRequest) (ImplResponse, error) {
	return s.answer(req)
}

func (s *recordingService) GetCollection(_ context.Context, req DocumentRequest) (ImplResponse, error) {
	return s.answer(req)
}

func (s *recordingService) GetIndividual(_ context.Context, req DocumentRequest) (ImplResponse, error) {
	return s.answer(req)
}

func (s *recordingService) GetRelationship(_ context.Context, req DocumentRequest) (ImplResponse, error) {
	return s.answer(req)
}

func (s *recordingService) GetRelated(_ context.Context, req DocumentRequest) (ImplResponse, error) {
	return s.answer(req)
}

func serve(t *testing.T, svc GatewayAPIServicer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(NewGatewayAPIController(svc)).ServeHTTP(rec, req)
	return rec
}

func TestParseRequest(t *testing.T) {
	svc := &recordingService{result: Response(http.StatusOK, NewDocument([]ResourceObject{}))}

	req := httptest.NewRequest(http.MethodGet,
		"/node/article/abc/relationships/field_tags?resourceVersion=id:7&fields[node--article]=title,%20body,&fields[taxonomy_term--tags]=name", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MediaType, rec.Header().Get("Content-Type"))
	assert.Equal(t, resource.Key("node--article"), svc.last.Key)
	assert.Equal(t, "abc", svc.last.ID)
	assert.Equal(t, "field_tags", svc.last.Field)
	assert.Equal(t, content.Version{Kind: content.VersionByID, RevisionID: 7}, svc.last.Version)
	assert.Equal(t, []string{"title", "body"}, svc.last.Fields["node--article"])
	assert.Equal(t, []string{"name"}, svc.last.Fields["taxonomy_term--tags"])
	assert.Equal(t, "https://example.com", svc.last.BaseURL)
}

func TestParseRequestRelatedRoute(t *testing.T) {
	svc := &recordingService{result: Response(http.StatusOK, NewDocument([]ResourceObject{}))}
	serve(t, svc, httptest.NewRequest(http.MethodGet, "/node/article/abc/field_tags", nil))

	assert.Equal(t, "field_tags", svc.last.Field)
	assert.Equal(t, content.Version{Kind: content.VersionDefault}, svc.last.Version)
	assert.Empty(t, svc.last.Fields)
}

func TestParseRequestLocalePrefixInBaseURL(t *testing.T) {
	svc := &recordingService{result: Response(http.StatusOK, NewDocument([]ResourceObject{}))}
	h := common.LocaleMiddleware([]string{"en", "ca"}, "en")(NewRouter(NewGatewayAPIController(svc)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ca/node/article", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com/ca", svc.last.BaseURL)
}

func TestParseRequestErrors(t *testing.T) {
	for name, path := range map[string]string{
		"bad version":     "/node/article/abc?resourceVersion=nope",
		"bad fieldset":    "/node/article?fields[article]=title",
		"unknown version": "/node/article/abc?resourceVersion=rel:oldest",
	} {
		svc := &recordingService{}
		rec := serve(t, svc, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var doc Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc), name)
		require.Len(t, doc.Errors, 1, name)
		assert.Equal(t, "400", doc.Errors[0].Status, name)
		assert.Empty(t, svc.last.Key, "service must not be called")
	}
}

func TestServiceErrors(t *testing.T) {
	svc := &recordingService{
		result: ImplResponse{Code: http.StatusNotFound, Headers: http.Header{"X-Gateway-Cache-Tags": {"node_list"}}},
		err:    common.NewErrNotFound("node--article abc"),
	}
	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/node/article/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, "node_list", rec.Header().Get("X-Gateway-Cache-Tags"))

	svc = &recordingService{err: errors.New("backend down")}
	rec = serve(t, svc, httptest.NewRequest(http.MethodGet, "/node/article", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var doc Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "backend down", doc.Errors[0].Detail)
	assert.NotEmpty(t, doc.Errors[0].ID)
}

func TestEncodeJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	status := http.StatusCreated
	require.NoError(t, EncodeJSONResponse(map[string]string{"a": "b"}, &status, rec))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":"b"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, EncodeJSONResponse(nil, nil, rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestDocumentJSON(t *testing.T) {
	doc := NewDocument(ResourceObject{
		Type: "node--article",
		ID:   "abc",
		Relationships: map[string]Relationship{
			"field_tags": {Data: []ResourceIdentifier{}},
		},
	})
	data, err := common.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"jsonapi": {"version": "1.0"},
		"data": {
			"type": "node--article",
			"id": "abc",
			"relationships": {"field_tags": {"data": []}}
		}
	}`, string(data))
}
