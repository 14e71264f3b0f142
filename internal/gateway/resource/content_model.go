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
	"fmt"
	"log"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ContentModel is the YAML description of the entity types and bundles a
// content backend holds. It is the source the catalog is built from.
type ContentModel struct {
	EntityTypes []EntityTypeDefinition `yaml:"entityTypes"`
}

// EntityTypeDefinition describes one entity type and its bundles.
type EntityTypeDefinition struct {
	ID          string             `yaml:"id"`
	Label       string             `yaml:"label"`
	LabelField  string             `yaml:"labelField"`
	Versionable bool               `yaml:"versionable"`
	Mutable     bool               `yaml:"mutable"`
	Bundles     []BundleDefinition `yaml:"bundles"`
}

// BundleDefinition describes a bundle. Locatable defaults to true.
type BundleDefinition struct {
	ID            string              `yaml:"id"`
	Label         string              `yaml:"label"`
	Internal      bool                `yaml:"internal"`
	Locatable     *bool               `yaml:"locatable"`
	Fields        []string            `yaml:"fields"`
	Relationships map[string][]string `yaml:"relationships"`
}

// LoadContentModel reads a content model file and builds the catalog from it.
func LoadContentModel(path string) (*StaticCatalog, error) {
	log.Printf("📁 Loading content model from file: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("GW-CATALOG-READ: %w", err)
	}
	return ParseContentModel(data)
}

// ParseContentModel builds the catalog from YAML content model bytes.
func ParseContentModel(data []byte) (*StaticCatalog, error) {
	var m ContentModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("GW-CATALOG-PARSE: %w", err)
	}
	types, err := m.Types()
	if err != nil {
		return nil, err
	}
	c := NewStaticCatalog(types...)
	log.Printf("✅ Content model loaded: %d resource types exposed %v", len(c.types), c.Keys())
	return c, nil
}

// Types flattens the model into resource types. Relationship fields missing
// from the field list are appended to it.
func (m ContentModel) Types() ([]Type, error) {
	var out []Type
	for _, et := range m.EntityTypes {
		if et.ID == "" {
			return nil, fmt.Errorf("GW-CATALOG-PARSE: entity type without id")
		}
		if !IsAllowedKind(et.ID) {
			log.Printf("⚠️ Entity type %s is not exposed, allowed kinds are %v", et.ID, AllowedKinds())
		}
		for _, b := range et.Bundles {
			if b.ID == "" {
				return nil, fmt.Errorf("GW-CATALOG-PARSE: bundle without id in entity type %s", et.ID)
			}
			t := Type{
				Key:         NewKey(et.ID, b.ID),
				Label:       b.Label,
				LabelField:  et.LabelField,
				Fields:      append([]string(nil), b.Fields...),
				Internal:    b.Internal,
				Locatable:   b.Locatable == nil || *b.Locatable,
				Versionable: et.Versionable,
				Mutable:     et.Mutable,
			}
			if t.Label == "" {
				t.Label = b.ID
			}
			if t.LabelField == "" {
				t.LabelField = "label"
			}
			if len(b.Relationships) > 0 {
				t.Relationships = make(map[string][]Key, len(b.Relationships))
				fields := make([]string, 0, len(b.Relationships))
				for field := range b.Relationships {
					fields = append(fields, field)
				}
				slices.Sort(fields)
				for _, field := range fields {
					targets := b.Relationships[field]
					keys := make([]Key, 0, len(targets))
					for _, target := range targets {
						k, err := ParseKey(target)
						if err != nil {
							return nil, fmt.Errorf("GW-CATALOG-PARSE: relationship %s of %s: %w", field, t.Key, err)
						}
						keys = append(keys, k)
					}
					t.Relationships[field] = SortKeys(keys)
					if !t.HasField(field) {
						t.Fields = append(t.Fields, field)
					}
				}
			}
			out = append(out, t)
		}
	}
	return out, nil
}
