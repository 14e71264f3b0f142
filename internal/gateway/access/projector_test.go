package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

func articleType(t *testing.T) resource.Type {
	t.Helper()
	rt, err := testCatalog().Get("node--article")
	require.NoError(t, err)
	return rt
}

func disabledFieldX() *policy.Config {
	return (&policy.Config{ResourceDisabledFields: map[resource.Key][]string{"node--article": {"field_x"}}}).Normalize()
}

func TestProjectRemovesDisabledFieldsInGatewayNamespace(t *testing.T) {
	t.Parallel()

	got := ProjectFields(articleType(t), []string{"title", "field_x"}, disabledFieldX(), NamespaceGateway)
	assert.Equal(t, []string{"title"}, got)
}

func TestProjectKeepsFieldsInStandardNamespace(t *testing.T) {
	t.Parallel()

	got := ProjectFields(articleType(t), []string{"title", "field_x"}, disabledFieldX(), NamespaceStandard)
	assert.Equal(t, []string{"title", "field_x"}, got)
}

func TestProjectWithoutSparseFieldsetUsesAllFields(t *testing.T) {
	t.Parallel()

	got := PolicyProjector{}.Project(articleType(t), nil, disabledFieldX(), NamespaceGateway)
	assert.Equal(t, []string{"title", "body", "field_tags"}, got)
}

func TestProjectNeverIntroducesFields(t *testing.T) {
	t.Parallel()

	rt := articleType(t)
	requested := []string{"body", "unknown", "title", "body"}
	got := ProjectFields(rt, requested, policy.NewConfig(), NamespaceGateway)

	assert.Equal(t, []string{"body", "title"}, got)
	for _, f := range got {
		assert.Contains(t, requested, f)
		assert.True(t, rt.HasField(f))
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	t.Parallel()

	rt := articleType(t)
	cfg := disabledFieldX()
	first := ProjectFields(rt, []string{"field_x", "body", "title"}, cfg, NamespaceGateway)
	second := ProjectFields(rt, []string{"field_x", "body", "title"}, cfg, NamespaceGateway)
	assert.Equal(t, first, second)
	assert.Equal(t, first, ProjectFields(rt, first, cfg, NamespaceGateway))
}
