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

//nolint:revive
package common

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GetCurrentTimestamp returns the current timestamp in RFC3339 format.
func GetCurrentTimestamp() string {
	return time.Now().Format(time.RFC3339)
}

// NormalizeBasePath normalizes a URL path to ensure consistent formatting
// for API endpoints and routing.
//
// Examples:
//
//	NormalizeBasePath("")        // Returns: "/"
//	NormalizeBasePath("api")     // Returns: "/api"
//	NormalizeBasePath("/api/")   // Returns: "/api"
func NormalizeBasePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// JoinPath appends suffix to a normalized base path without doubling slashes.
func JoinPath(base string, suffix string) string {
	base = NormalizeBasePath(base)
	if base == "/" {
		base = ""
	}
	if suffix == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + strings.TrimLeft(suffix, "/")
}

// NewCorrelationID returns a random id for error messages and logs.
func NewCorrelationID() string {
	return uuid.NewString()
}

// NormalizeRoleID is the canonical form of a role id: trimmed and lower case.
func NormalizeRoleID(role string) string {
	return strings.TrimSpace(strings.ToLower(role))
}

// UniqueSorted trims, drops empty values, sorts and de-duplicates the input.
// The input slice is not modified.
func UniqueSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
