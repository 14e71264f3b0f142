package policy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rebuildFlag struct{ count atomic.Int32 }

func (f *rebuildFlag) SetRebuildNeeded() { f.count.Add(1) }

func testCatalog() *resource.StaticCatalog {
	return resource.NewStaticCatalog(
		resource.Type{Key: "node--article", Label: "Article", LabelField: "title", Fields: []string{"title", "body"}},
		resource.Type{Key: "node--page", Label: "Basic page", LabelField: "title", Fields: []string{"title", "body"}},
		resource.Type{Key: "taxonomy_term--tags", Label: "Tags", LabelField: "name", Fields: []string{"name"}},
	)
}

func TestSetEnabledResourceTypesStoresComplement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(&Config{DisabledResourceTypes: []resource.Key{"node--gone"}})
	flag := &rebuildFlag{}
	admin := NewAdministrator(store, testCatalog(), flag)

	require.NoError(t, admin.SetEnabledResourceTypes(ctx, []resource.Key{"node--article"}))

	cfg, err := admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []resource.Key{"node--gone", "node--page", "taxonomy_term--tags"}, cfg.DisabledResourceTypes)
	assert.Equal(t, int32(1), flag.count.Load())
}

func TestSetRoleResourceGrantsMergesRoleSpellings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(nil)
	admin := NewAdministrator(store, testCatalog(), nil)
	require.NoError(t, admin.SetRoleResourceGrants(ctx, map[string][]resource.Key{
		"Editor": {"node--article"},
		"editor": {"node--page"},
	}))

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]resource.Key{"editor": {"node--article", "node--page"}}, cfg.RoleResourceGrants)
}

func TestReloadReadsBackendChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := NewMemoryStore(&Config{DisabledLocales: []string{"ca"}})
	cached := NewCachedStore(backend)
	flag := &rebuildFlag{}
	admin := NewAdministrator(cached, testCatalog(), flag)

	cfg, err := admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ca"}, cfg.DisabledLocales)

	require.NoError(t, backend.Save(ctx, &Config{DisabledLocales: []string{"es"}}))
	cfg, err = admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ca"}, cfg.DisabledLocales)

	admin.Reload()
	assert.Equal(t, int32(1), flag.count.Load())
	cfg, err = admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"es"}, cfg.DisabledLocales)
}

func TestSettersReplaceOnlyTheirSetting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore(nil)
	flag := &rebuildFlag{}
	admin := NewAdministrator(store, testCatalog(), flag)

	require.NoError(t, admin.SetRoleResourceGrants(ctx, map[string][]resource.Key{
		"anonymous": {"node--article"},
		"editor":    {"node--article", "node--page"},
	}))
	require.NoError(t, admin.SetDisabledLocales(ctx, []string{"fr"}))
	require.NoError(t, admin.SetPerResourceDisabledLocales(ctx, map[resource.Key][]string{"node--article": {"es"}}))
	require.NoError(t, admin.SetPerResourceDisabledFields(ctx, map[resource.Key][]string{"node--article": {"body"}}))

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.RoleGrants("editor", "node--page"))
	assert.Equal(t, []string{"fr"}, cfg.DisabledLocales)
	assert.Equal(t, []string{"es"}, cfg.ResourceDisabledLocales["node--article"])
	assert.Equal(t, []string{"body"}, cfg.DisabledFieldsFor("node--article"))
	assert.Equal(t, int32(4), flag.count.Load())

	require.NoError(t, admin.SetRoleResourceGrants(ctx, map[string][]resource.Key{"anonymous": {"node--page"}}))
	cfg, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.RoleGrants("editor", "node--page"))
	assert.Equal(t, []string{"fr"}, cfg.DisabledLocales)
}

func TestSetResourceDisabledLocalesReportsInherited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := NewAdministrator(NewMemoryStore(&Config{DisabledLocales: []string{"fr"}}), testCatalog(), nil)

	inherited, err := admin.SetResourceDisabledLocales(ctx, "node--article", []string{"es", "fr"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fr"}, inherited)

	cfg, err := admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"es", "fr"}, cfg.ResourceDisabledLocales["node--article"])

	_, err = admin.SetResourceDisabledLocales(ctx, "user--user", []string{"es"})
	assert.True(t, common.IsErrNotFound(err))
}

func TestSetResourceDisabledFieldsValidatesFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	flag := &rebuildFlag{}
	admin := NewAdministrator(NewMemoryStore(nil), testCatalog(), flag)

	err := admin.SetResourceDisabledFields(ctx, "node--article", []string{"body", "nope"})
	assert.True(t, common.IsErrBadRequest(err))
	assert.Zero(t, flag.count.Load())

	require.NoError(t, admin.SetResourceDisabledFields(ctx, "node--article", []string{"body"}))
	cfg, err := admin.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"body"}, cfg.DisabledFieldsFor("node--article"))
}

func TestFailedSaveDoesNotSignalRebuild(t *testing.T) {
	t.Parallel()

	backend := &countingStore{inner: NewMemoryStore(nil), err: errors.New("down")}
	flag := &rebuildFlag{}
	admin := NewAdministrator(backend, testCatalog(), flag)

	require.Error(t, admin.SetDisabledLocales(context.Background(), []string{"ca"}))
	assert.Zero(t, flag.count.Load())
}
