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

// Package content provides the entities served through the gateway and the
// stores they are read from.
package content

import (
	"maps"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Identifier points at another entity.
type Identifier struct {
	Type resource.Key `json:"type" yaml:"type" bson:"type"`
	ID   string       `json:"id" yaml:"id" bson:"id"`
}

// Translation holds the translated values of an entity.
type Translation struct {
	Label      string         `json:"label" yaml:"label" bson:"label"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes" bson:"attributes,omitempty"`
}

// Entity is one revision of a content entity in one language.
type Entity struct {
	ID              string                  `json:"id" bson:"uuid"`
	Type            resource.Key            `json:"type" bson:"type"`
	Langcode        string                  `json:"langcode" bson:"langcode"`
	Label           string                  `json:"label" bson:"label"`
	Published       bool                    `json:"published" bson:"published"`
	RevisionID      int64                   `json:"revisionId" bson:"revision_id"`
	DefaultRevision bool                    `json:"defaultRevision" bson:"default_revision"`
	LatestRevision  bool                    `json:"latestRevision" bson:"latest_revision"`
	Attributes      map[string]any          `json:"attributes,omitempty" bson:"attributes,omitempty"`
	Relationships   map[string][]Identifier `json:"relationships,omitempty" bson:"relationships,omitempty"`
	Translations    map[string]Translation  `json:"translations,omitempty" bson:"translations,omitempty"`
}

// Key returns the resource type key of the entity.
func (e *Entity) Key() resource.Key {
	return e.Type
}

// IsDefaultRevision reports whether this is the revision served by default.
// Entities without revision data count as default.
func (e *Entity) IsDefaultRevision() bool {
	return e.DefaultRevision || e.RevisionID == 0
}

// IsLatestRevision reports whether no newer revision exists.
func (e *Entity) IsLatestRevision() bool {
	return e.LatestRevision || e.RevisionID == 0
}

// HasTranslation reports whether the entity exists in the locale.
func (e *Entity) HasTranslation(locale string) bool {
	if locale == e.Langcode {
		return true
	}
	_, ok := e.Translations[locale]
	return ok
}

// Translate returns the entity in the given locale. Without a translation
// the entity is returned unchanged, still in its own language.
func (e *Entity) Translate(locale string) *Entity {
	if locale == "" || locale == e.Langcode || !e.HasTranslation(locale) {
		return e
	}
	tr := e.Translations[locale]
	out := *e
	out.Langcode = locale
	out.Label = tr.Label
	out.Attributes = maps.Clone(e.Attributes)
	if out.Attributes == nil {
		out.Attributes = map[string]any{}
	}
	maps.Copy(out.Attributes, tr.Attributes)
	return &out
}

// Value returns the attribute or relationship value of a field.
func (e *Entity) Value(field string) (any, bool) {
	if v, ok := e.Attributes[field]; ok {
		return v, true
	}
	if ids, ok := e.Relationships[field]; ok {
		return ids, true
	}
	return nil, false
}
