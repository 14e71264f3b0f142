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

package resource

import (
	"slices"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// allowedKinds is the fixed set of structural entity types the gateway may
// ever expose. Everything else in a content model is dropped by the catalog.
var allowedKinds = []string{"node", "taxonomy_term", "taxonomy_vocabulary"}

// IsAllowedKind reports whether the entity type is on the allow-list.
func IsAllowedKind(entityTypeID string) bool {
	return slices.Contains(allowedKinds, entityTypeID)
}

// AllowedKinds returns a copy of the allow-list.
func AllowedKinds() []string {
	return slices.Clone(allowedKinds)
}

// Type is the read-only description of one resource type.
type Type struct {
	Key        Key    `json:"type"`
	Label      string `json:"label"`
	LabelField string `json:"labelField"`
	// Fields lists every public field name in declaration order.
	Fields []string `json:"fields"`
	// Relationships maps relationship field names to the keys they may point to.
	Relationships map[string][]Key `json:"relationships,omitempty"`
	Internal      bool             `json:"internal"`
	Locatable     bool             `json:"locatable"`
	Versionable   bool             `json:"versionable"`
	Mutable       bool             `json:"mutable"`
}

// HasField reports whether name is a known field of the type.
func (t Type) HasField(name string) bool {
	return slices.Contains(t.Fields, name)
}

// IsRelationship reports whether name is a relationship field of the type.
func (t Type) IsRelationship(name string) bool {
	_, ok := t.Relationships[name]
	return ok
}

// Catalog enumerates the resource types known to the gateway.
type Catalog interface {
	// ListAll returns every catalog type in a stable order.
	ListAll() []Type
	// Get returns the type for key or a NotFound error.
	Get(key Key) (Type, error)
}

// StaticCatalog is an immutable Catalog built once at startup.
type StaticCatalog struct {
	types []Type
	index map[Key]int
}

// NewStaticCatalog builds a catalog from the given types. Types outside the
// allow-list are discarded, duplicates keep the first definition, and the
// result is ordered by key.
func NewStaticCatalog(types ...Type) *StaticCatalog {
	c := &StaticCatalog{index: make(map[Key]int, len(types))}
	seen := make(map[Key]struct{}, len(types))
	for _, t := range types {
		if !IsAllowedKind(t.Key.EntityType()) {
			continue
		}
		if _, dup := seen[t.Key]; dup {
			continue
		}
		seen[t.Key] = struct{}{}
		c.types = append(c.types, t)
	}
	slices.SortFunc(c.types, func(a, b Type) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	for i, t := range c.types {
		c.index[t.Key] = i
	}
	return c
}

// ListAll returns a copy of the catalog in key order.
func (c *StaticCatalog) ListAll() []Type {
	return slices.Clone(c.types)
}

// Get returns the type registered under key.
func (c *StaticCatalog) Get(key Key) (Type, error) {
	i, ok := c.index[key]
	if !ok {
		return Type{}, common.NewErrNotFound("resource type " + key.String())
	}
	return c.types[i], nil
}

// Keys returns every catalog key in order.
func (c *StaticCatalog) Keys() []Key {
	keys := make([]Key, 0, len(c.types))
	for _, t := range c.types {
		keys = append(keys, t.Key)
	}
	return keys
}
