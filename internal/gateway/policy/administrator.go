package policy

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// RebuildSignaler is told that the route table is stale.
type RebuildSignaler interface {
	SetRebuildNeeded()
}

// Administrator applies settings changes. Every setter loads the current
// document, changes one setting, saves the whole document and flags the
// route table for rebuild.
type Administrator struct {
	store   Store
	catalog resource.Catalog
	routes  RebuildSignaler

	mu sync.Mutex
}

// NewAdministrator wires the settings store with the catalog used for
// validation and the route table to invalidate. routes may be nil.
func NewAdministrator(store Store, catalog resource.Catalog, routes RebuildSignaler) *Administrator {
	return &Administrator{store: store, catalog: catalog, routes: routes}
}

// Settings returns the current document.
func (a *Administrator) Settings(ctx context.Context) (*Config, error) {
	return a.store.Load(ctx)
}

// Reload drops any cached settings so the next read sees the backend, and
// flags the route table for rebuild. Stores without a cache are unaffected.
func (a *Administrator) Reload() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.store.(interface{ Invalidate() }); ok {
		c.Invalidate()
		log.Println("🔄 Gateway settings cache dropped")
	}
	if a.routes != nil {
		a.routes.SetRebuildNeeded()
	}
}

// SetEnabledResourceTypes stores every catalog type not in enabled as
// disabled. Disabled keys unknown to the catalog are kept as they were.
func (a *Administrator) SetEnabledResourceTypes(ctx context.Context, enabled []resource.Key) error {
	return a.update(ctx, "enabledResourceTypes", func(cfg *Config) error {
		var disabled []resource.Key
		for _, rt := range a.catalog.ListAll() {
			if !slices.Contains(enabled, rt.Key) {
				disabled = append(disabled, rt.Key)
			}
		}
		for _, k := range cfg.DisabledResourceTypes {
			if _, err := a.catalog.Get(k); common.IsErrNotFound(err) {
				disabled = append(disabled, k)
			}
		}
		cfg.DisabledResourceTypes = disabled
		return nil
	})
}

// SetRoleResourceGrants replaces the role to resource type grants.
func (a *Administrator) SetRoleResourceGrants(ctx context.Context, grants map[string][]resource.Key) error {
	return a.update(ctx, "roleResourceGrants", func(cfg *Config) error {
		cfg.RoleResourceGrants = make(map[string][]resource.Key, len(grants))
		for role, keys := range grants {
			role = common.NormalizeRoleID(role)
			cfg.RoleResourceGrants[role] = append(cfg.RoleResourceGrants[role], keys...)
		}
		return nil
	})
}

// SetDisabledLocales replaces the globally disabled locales.
func (a *Administrator) SetDisabledLocales(ctx context.Context, locales []string) error {
	return a.update(ctx, "disabledLocales", func(cfg *Config) error {
		cfg.DisabledLocales = slices.Clone(locales)
		return nil
	})
}

// SetPerResourceDisabledLocales replaces the per-type disabled locales.
func (a *Administrator) SetPerResourceDisabledLocales(ctx context.Context, locales map[resource.Key][]string) error {
	return a.update(ctx, "resourceDisabledLocales", func(cfg *Config) error {
		cfg.ResourceDisabledLocales = cloneLists(locales)
		return nil
	})
}

// SetPerResourceDisabledFields replaces the per-type disabled fields.
func (a *Administrator) SetPerResourceDisabledFields(ctx context.Context, fields map[resource.Key][]string) error {
	return a.update(ctx, "resourceDisabledFields", func(cfg *Config) error {
		cfg.ResourceDisabledFields = cloneLists(fields)
		return nil
	})
}

// SetResourceDisabledLocales replaces the disabled locales of one catalog
// type. It returns the requested locales that are already disabled globally;
// they are stored all the same.
func (a *Administrator) SetResourceDisabledLocales(ctx context.Context, key resource.Key, locales []string) ([]string, error) {
	if _, err := a.catalog.Get(key); err != nil {
		return nil, err
	}
	var inherited []string
	err := a.update(ctx, "resourceDisabledLocales", func(cfg *Config) error {
		for _, l := range common.UniqueSorted(locales) {
			if cfg.IsLocaleDisabled(l) {
				inherited = append(inherited, l)
			}
		}
		cfg.ResourceDisabledLocales[key] = slices.Clone(locales)
		return nil
	})
	return inherited, err
}

// SetResourceDisabledFields replaces the disabled fields of one catalog type.
// Every field must exist on the type.
func (a *Administrator) SetResourceDisabledFields(ctx context.Context, key resource.Key, fields []string) error {
	rt, err := a.catalog.Get(key)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if !rt.HasField(f) {
			return common.NewErrBadRequest(fmt.Sprintf("resource type %s has no field '%s'", key, f))
		}
	}
	return a.update(ctx, "resourceDisabledFields", func(cfg *Config) error {
		cfg.ResourceDisabledFields[key] = slices.Clone(fields)
		return nil
	})
}

func (a *Administrator) update(ctx context.Context, setting string, mutate func(cfg *Config) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	next := current.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	if err := a.store.Save(ctx, next.Normalize()); err != nil {
		log.Printf("❌ saving gateway setting %s failed: %v", setting, err)
		return err
	}
	common.RecordPolicySave(setting)
	if a.routes != nil {
		a.routes.SetRebuildNeeded()
	}
	log.Printf("✅ gateway setting %s saved", setting)
	return nil
}

func cloneLists(in map[resource.Key][]string) map[resource.Key][]string {
	out := make(map[resource.Key][]string, len(in))
	for k, values := range in {
		out[k] = slices.Clone(values)
	}
	return out
}
