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

// Package resource describes the resource types exposed by the gateway: the
// (entity type, bundle) keys, the per-type field layout and flags, and the
// catalog that enumerates them.
package resource

import (
	"slices"
	"strings"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// KeySeparator joins entity type and bundle in the serialized key form.
const KeySeparator = "--"

// Key identifies a resource type as "<entityType>--<bundle>".
type Key string

// NewKey builds the key of the given entity type and bundle.
func NewKey(entityTypeID, bundleID string) Key {
	return Key(entityTypeID + KeySeparator + bundleID)
}

// ParseKey validates the serialized form and returns it as a Key.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	et, bundle, ok := strings.Cut(s, KeySeparator)
	if !ok || et == "" || bundle == "" || strings.Contains(bundle, KeySeparator) {
		return "", common.NewErrBadRequest("invalid resource type key '" + s + "', expected <entityType>--<bundle>")
	}
	return Key(s), nil
}

// EntityType returns the entity type part of the key.
func (k Key) EntityType() string {
	et, _, _ := strings.Cut(string(k), KeySeparator)
	return et
}

// Bundle returns the bundle part of the key.
func (k Key) Bundle() string {
	_, b, _ := strings.Cut(string(k), KeySeparator)
	return b
}

func (k Key) String() string {
	return string(k)
}

// SortKeys sorts keys lexicographically in place, drops duplicates and returns
// the compacted slice.
func SortKeys(keys []Key) []Key {
	slices.Sort(keys)
	return slices.Compact(keys)
}
