package policy

import (
	"testing"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalizeSortsAndDropsEmptyEntries(t *testing.T) {
	t.Parallel()

	cfg := (&Config{
		DisabledResourceTypes: []resource.Key{"node--page", "node--article", "node--page"},
		DisabledLocales:       []string{"fr", " ca ", "", "fr"},
		RoleResourceGrants: map[string][]resource.Key{
			"editor": {"node--page", "node--article"},
			"empty":  {},
			"":       {"node--article"},
		},
		ResourceDisabledLocales: map[resource.Key][]string{"node--article": {"es"}, "node--page": {}},
		ResourceDisabledFields:  map[resource.Key][]string{"node--article": {"body", "body"}},
	}).Normalize()

	assert.Equal(t, []resource.Key{"node--article", "node--page"}, cfg.DisabledResourceTypes)
	assert.Equal(t, []string{"ca", "fr"}, cfg.DisabledLocales)
	assert.Equal(t, map[string][]resource.Key{"editor": {"node--article", "node--page"}}, cfg.RoleResourceGrants)
	assert.Equal(t, map[resource.Key][]string{"node--article": {"es"}}, cfg.ResourceDisabledLocales)
	assert.Equal(t, map[resource.Key][]string{"node--article": {"body"}}, cfg.ResourceDisabledFields)
}

func TestNormalizeFoldsRoleIDs(t *testing.T) {
	t.Parallel()

	cfg := (&Config{RoleResourceGrants: map[string][]resource.Key{
		"Editor":    {"node--article"},
		" editor ":  {"node--page", "node--article"},
		"ANONYMOUS": {"taxonomy_term--tags"},
	}}).Normalize()

	assert.Equal(t, map[string][]resource.Key{
		"editor":    {"node--article", "node--page"},
		"anonymous": {"taxonomy_term--tags"},
	}, cfg.RoleResourceGrants)
	assert.True(t, cfg.RoleGrants("editor", "node--page"))
	assert.True(t, cfg.RoleGrants("Editor", "node--article"))
	assert.False(t, cfg.RoleGrants("editor", "taxonomy_term--tags"))
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := (&Config{
		RoleResourceGrants:     map[string][]resource.Key{"editor": {"node--article"}},
		ResourceDisabledFields: map[resource.Key][]string{"node--article": {"body"}},
	}).Normalize()

	c := orig.Clone()
	c.RoleResourceGrants["editor"][0] = "node--page"
	c.ResourceDisabledFields["node--article"] = append(c.ResourceDisabledFields["node--article"], "title")
	c.DisabledLocales = append(c.DisabledLocales, "ca")

	assert.Equal(t, []resource.Key{"node--article"}, orig.RoleResourceGrants["editor"])
	assert.Equal(t, []string{"body"}, orig.ResourceDisabledFields["node--article"])
	assert.Empty(t, orig.DisabledLocales)

	var nilCfg *Config
	assert.True(t, nilCfg.Clone().IsEmpty())
}

func TestLookups(t *testing.T) {
	t.Parallel()

	cfg := (&Config{
		DisabledResourceTypes:   []resource.Key{"node--page"},
		DisabledLocales:         []string{"fr"},
		ResourceDisabledLocales: map[resource.Key][]string{"node--article": {"es"}},
		ResourceDisabledFields:  map[resource.Key][]string{"node--article": {"body"}},
		RoleResourceGrants: map[string][]resource.Key{
			"editor":    {"node--article"},
			"anonymous": {"node--article", "node--page"},
		},
	}).Normalize()

	assert.True(t, cfg.IsResourceTypeDisabled("node--page"))
	assert.False(t, cfg.IsResourceTypeDisabled("node--article"))

	assert.True(t, cfg.IsLocaleDisabled("fr"))
	assert.False(t, cfg.IsLocaleDisabled("es"))
	assert.True(t, cfg.IsLocaleDisabledFor("node--article", "es"))
	assert.True(t, cfg.IsLocaleDisabledFor("node--article", "fr"))
	assert.False(t, cfg.IsLocaleDisabledFor("node--page", "es"))
	assert.Equal(t, []string{"es", "fr"}, cfg.DisabledLocalesFor("node--article"))

	assert.Equal(t, []string{"body"}, cfg.DisabledFieldsFor("node--article"))
	assert.Empty(t, cfg.DisabledFieldsFor("node--page"))

	assert.True(t, cfg.RoleGrants("editor", "node--article"))
	assert.False(t, cfg.RoleGrants("editor", "node--page"))
	assert.Equal(t, []string{"anonymous", "editor"}, cfg.GrantedRoles("node--article"))
}

func TestConfigJSONShape(t *testing.T) {
	t.Parallel()

	cfg := (&Config{
		RoleResourceGrants:     map[string][]resource.Key{"editor": {"node--article"}},
		ResourceDisabledFields: map[resource.Key][]string{"node--article": {"body"}},
	}).Normalize()

	data, err := common.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"disabledResourceTypes": [],
		"roleResourceGrants": {"editor": ["node--article"]},
		"disabledLocales": [],
		"resourceDisabledLocales": {},
		"resourceDisabledFields": {"node--article": ["body"]}
	}`, string(data))
}

func TestConfigFromYAML(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(`
disabledResourceTypes: [node--page]
roleResourceGrants:
  anonymous: [node--article]
resourceDisabledLocales:
  node--article: [es]
`), &cfg))
	cfg.Normalize()

	assert.True(t, cfg.IsResourceTypeDisabled("node--page"))
	assert.True(t, cfg.RoleGrants("anonymous", "node--article"))
	assert.True(t, cfg.IsLocaleDisabledFor("node--article", "es"))
}
