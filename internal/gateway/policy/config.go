/*******************************************************************************
* Copyright (C) 2026 the Eclipse BaSyx Authors and Fraunhofer IESE
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package policy holds the administrator-controlled gateway settings: which
// resource types are enabled, which roles may see them, and which locales and
// fields are withheld. Settings are saved as one document and read back as an
// immutable snapshot.
package policy

import (
	"maps"
	"slices"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Config is the persisted settings document. Resource types are enabled
// unless listed in DisabledResourceTypes. Keys that no longer exist in the
// catalog are kept and ignored.
//
// A *Config returned by a Store is shared; callers that want to change it
// must work on Clone().
type Config struct {
	DisabledResourceTypes   []resource.Key            `json:"disabledResourceTypes" yaml:"disabledResourceTypes"`
	RoleResourceGrants      map[string][]resource.Key `json:"roleResourceGrants" yaml:"roleResourceGrants"`
	DisabledLocales         []string                  `json:"disabledLocales" yaml:"disabledLocales"`
	ResourceDisabledLocales map[resource.Key][]string `json:"resourceDisabledLocales" yaml:"resourceDisabledLocales"`
	ResourceDisabledFields  map[resource.Key][]string `json:"resourceDisabledFields" yaml:"resourceDisabledFields"`
}

// NewConfig returns an empty settings document: everything enabled, no grants.
func NewConfig() *Config {
	return (&Config{}).Normalize()
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return NewConfig()
	}
	out := &Config{
		DisabledResourceTypes:   slices.Clone(c.DisabledResourceTypes),
		DisabledLocales:         slices.Clone(c.DisabledLocales),
		RoleResourceGrants:      make(map[string][]resource.Key, len(c.RoleResourceGrants)),
		ResourceDisabledLocales: make(map[resource.Key][]string, len(c.ResourceDisabledLocales)),
		ResourceDisabledFields:  make(map[resource.Key][]string, len(c.ResourceDisabledFields)),
	}
	for role, keys := range c.RoleResourceGrants {
		out.RoleResourceGrants[role] = slices.Clone(keys)
	}
	for k, locales := range c.ResourceDisabledLocales {
		out.ResourceDisabledLocales[k] = slices.Clone(locales)
	}
	for k, fields := range c.ResourceDisabledFields {
		out.ResourceDisabledFields[k] = slices.Clone(fields)
	}
	return out
}

// Normalize sorts and de-duplicates every list, drops empty map entries and
// replaces nil maps with empty ones. It returns c for chaining.
func (c *Config) Normalize() *Config {
	c.DisabledResourceTypes = resource.SortKeys(c.DisabledResourceTypes)
	c.DisabledLocales = common.UniqueSorted(c.DisabledLocales)
	if c.DisabledResourceTypes == nil {
		c.DisabledResourceTypes = []resource.Key{}
	}

	grants := make(map[string][]resource.Key, len(c.RoleResourceGrants))
	for role, keys := range c.RoleResourceGrants {
		role = common.NormalizeRoleID(role)
		if role == "" {
			continue
		}
		if keys = resource.SortKeys(append(slices.Clone(grants[role]), keys...)); len(keys) > 0 {
			grants[role] = keys
		}
	}
	c.RoleResourceGrants = grants
	c.ResourceDisabledLocales = normalizeStringLists(c.ResourceDisabledLocales)
	c.ResourceDisabledFields = normalizeStringLists(c.ResourceDisabledFields)
	return c
}

func normalizeStringLists(in map[resource.Key][]string) map[resource.Key][]string {
	out := make(map[resource.Key][]string, len(in))
	for k, values := range in {
		if values = common.UniqueSorted(values); len(values) > 0 {
			out[k] = values
		}
	}
	return out
}

// IsResourceTypeDisabled reports whether the key is in the disabled set.
func (c *Config) IsResourceTypeDisabled(k resource.Key) bool {
	return slices.Contains(c.DisabledResourceTypes, k)
}

// IsLocaleDisabled reports whether the locale is disabled globally.
func (c *Config) IsLocaleDisabled(locale string) bool {
	return slices.Contains(c.DisabledLocales, locale)
}

// IsLocaleDisabledFor reports whether the locale is disabled globally or for
// the given resource type.
func (c *Config) IsLocaleDisabledFor(k resource.Key, locale string) bool {
	return c.IsLocaleDisabled(locale) || slices.Contains(c.ResourceDisabledLocales[k], locale)
}

// DisabledLocalesFor returns the union of global and per-type disabled locales.
func (c *Config) DisabledLocalesFor(k resource.Key) []string {
	return common.UniqueSorted(append(slices.Clone(c.DisabledLocales), c.ResourceDisabledLocales[k]...))
}

// DisabledFieldsFor returns the withheld fields of the resource type.
func (c *Config) DisabledFieldsFor(k resource.Key) []string {
	return c.ResourceDisabledFields[k]
}

// RoleGrants reports whether role is explicitly granted the key.
func (c *Config) RoleGrants(role string, k resource.Key) bool {
	return slices.Contains(c.RoleResourceGrants[common.NormalizeRoleID(role)], k)
}

// GrantedRoles returns the roles with an explicit grant for the key, sorted.
func (c *Config) GrantedRoles(k resource.Key) []string {
	var roles []string
	for _, role := range slices.Sorted(maps.Keys(c.RoleResourceGrants)) {
		if c.RoleGrants(role, k) {
			roles = append(roles, role)
		}
	}
	return roles
}
