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

// Package routing builds the table of resource routes exposed by a namespace.
// The table is derived from the catalog and the gateway settings, memoized,
// and swapped as a whole when an administrator signals that it is stale.
package routing

import (
	"maps"
	"slices"
	"strings"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Kind is the kind of a resource route.
type Kind string

const (
	KindEntryPoint   Kind = "resource_list"
	KindCollection   Kind = "collection"
	KindIndividual   Kind = "individual"
	KindRelationship Kind = "relationship"
	KindRelated      Kind = "related"
)

// Route is one named route of the table.
type Route struct {
	Name  string       `json:"name"`
	Kind  Kind         `json:"kind"`
	Key   resource.Key `json:"resourceType,omitempty"`
	Field string       `json:"field,omitempty"`
	Path  string       `json:"path"`
}

// Table is an immutable snapshot of the routes of one namespace.
type Table struct {
	prefix   string
	basePath string
	routes   []Route
	byName   map[string]int
	types    map[resource.Key]resource.Type
}

func newTable(prefix, basePath string, types []resource.Type) *Table {
	t := &Table{
		prefix:   prefix,
		basePath: strings.TrimSuffix(basePath, "/"),
		byName:   map[string]int{},
		types:    make(map[resource.Key]resource.Type, len(types)),
	}
	for _, rt := range types {
		t.types[rt.Key] = rt
	}
	t.add(Route{Name: prefix + "." + string(KindEntryPoint), Kind: KindEntryPoint, Path: t.basePath})
	for _, rt := range types {
		base := t.basePath + "/" + rt.Key.EntityType() + "/" + rt.Key.Bundle()
		if rt.Locatable {
			t.add(Route{Name: t.name(rt.Key, "", KindCollection), Kind: KindCollection, Key: rt.Key, Path: base})
		}
		t.add(Route{Name: t.name(rt.Key, "", KindIndividual), Kind: KindIndividual, Key: rt.Key, Path: base + "/{id}"})
		for _, field := range slices.Sorted(maps.Keys(rt.Relationships)) {
			t.add(Route{
				Name:  t.name(rt.Key, field, KindRelationship),
				Kind:  KindRelationship,
				Key:   rt.Key,
				Field: field,
				Path:  base + "/{id}/relationships/" + field,
			})
			if t.anyRoutable(rt.Relationships[field]) {
				t.add(Route{
					Name:  t.name(rt.Key, field, KindRelated),
					Kind:  KindRelated,
					Key:   rt.Key,
					Field: field,
					Path:  base + "/{id}/" + field,
				})
			}
		}
	}
	return t
}

func (t *Table) add(r Route) {
	t.byName[r.Name] = len(t.routes)
	t.routes = append(t.routes, r)
}

func (t *Table) anyRoutable(keys []resource.Key) bool {
	for _, k := range keys {
		if _, ok := t.types[k]; ok {
			return true
		}
	}
	return false
}

func (t *Table) name(key resource.Key, field string, kind Kind) string {
	if field == "" {
		return t.prefix + "." + key.String() + "." + string(kind)
	}
	return t.prefix + "." + key.String() + "." + field + "." + string(kind)
}

// Routes returns every route in registration order.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// Keys returns the routable resource types in catalog order.
func (t *Table) Keys() []resource.Key {
	var keys []resource.Key
	for _, r := range t.routes {
		if r.Kind == KindIndividual {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// IsRoutable reports whether the resource type has routes.
func (t *Table) IsRoutable(key resource.Key) bool {
	_, ok := t.types[key]
	return ok
}

// Type returns the routed resource type.
func (t *Table) Type(key resource.Key) (resource.Type, bool) {
	rt, ok := t.types[key]
	return rt, ok
}

// Lookup returns the route of the given kind for the type and field.
func (t *Table) Lookup(key resource.Key, field string, kind Kind) (Route, bool) {
	name := t.prefix + "." + string(KindEntryPoint)
	if kind != KindEntryPoint {
		name = t.name(key, field, kind)
	}
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Path expands the route of the given kind with id. It returns false when the
// route does not exist.
func (t *Table) Path(key resource.Key, field string, kind Kind, id string) (string, bool) {
	r, ok := t.Lookup(key, field, kind)
	if !ok {
		return "", false
	}
	return strings.Replace(r.Path, "{id}", id, 1), true
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}
