package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && r.act == p.act
`

const testPolicy = `p, role:anonymous, node--*, view
p, role:anonymous, taxonomy_term--tags, view label
p, role:editor, node--*, view
p, role:editor, node--*, view unpublished
p, role:editor, node--article, view all revisions
p, role:editor, *, access gateway
`

func newTestPermissions(t *testing.T) *CasbinPermissions {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	policyPath := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(modelPath, []byte(testModel), 0o600))
	require.NoError(t, os.WriteFile(policyPath, []byte(testPolicy), 0o600))

	perms, err := NewCasbinPermissions(modelPath, policyPath)
	require.NoError(t, err)
	return perms
}

func TestCasbinEntityAccess(t *testing.T) {
	t.Parallel()
	perms := newTestPermissions(t)
	anon := AnonymousPrincipal("anonymous")

	published := article(2, true)
	res := perms.EntityAccess(anon, published, OperationView)
	assert.True(t, res.Allowed)
	assert.Contains(t, res.Cacheability.Tags(), TagPermissions)
	assert.True(t, res.Cacheability.VariesByRoles())

	assert.False(t, perms.EntityAccess(anon, published, OperationViewAllRevisions).Allowed)
	assert.True(t, perms.EntityAccess(editor, published, OperationViewAllRevisions).Allowed)

	draft := article(3, false)
	draft.Published = false
	denied := perms.EntityAccess(anon, draft, OperationView)
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.Reason, "view unpublished")
	assert.True(t, perms.EntityAccess(editor, draft, OperationView).Allowed)
}

func TestCasbinRolesCombineAndAdminBypasses(t *testing.T) {
	t.Parallel()
	perms := newTestPermissions(t)

	page := article(1, true)
	page.Type = "node--page"
	assert.False(t, perms.EntityAccess(NewPrincipal(Role{ID: "reviewer"}), page, OperationView).Allowed)
	assert.True(t, perms.EntityAccess(NewPrincipal(Role{ID: "reviewer"}, Role{ID: "Editor"}), page, OperationView).Allowed)
	assert.True(t, perms.EntityAccess(NewPrincipal(Role{ID: "root", Admin: true}), page, OperationDelete).Allowed)
}

func TestCasbinGlobalCapabilities(t *testing.T) {
	t.Parallel()
	perms := newTestPermissions(t)

	assert.True(t, perms.HasCapability(editor, "access gateway"))
	assert.False(t, perms.HasCapability(AnonymousPrincipal("anonymous"), "access gateway"))
	assert.False(t, perms.HasCapability(editor, "view"), "resource scoped grants are not global")
	assert.True(t, perms.HasCapability(NewPrincipal(Role{ID: "root", Admin: true}), "anything"))
	assert.Equal(t, "role:anonymous", SubjectFromRole(" "))
}

func TestCasbinMissingModel(t *testing.T) {
	t.Parallel()

	_, err := NewCasbinPermissions(filepath.Join(t.TempDir(), "missing.conf"), "policy.csv")
	assert.Error(t, err)
}
