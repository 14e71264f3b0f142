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

// Package access decides what a principal may see through the gateway. It
// resolves the visible and routable resource types, evaluates access to single
// entities and projects the fields that may be serialized.
//
// Every decision is a value carrying the cache contexts and tags a response
// derived from it must vary on.
package access

import "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"

// Namespace tells evaluators which URL namespace a request was served under.
type Namespace int

const (
	// NamespaceStandard is the unfiltered document API.
	NamespaceStandard Namespace = iota
	// NamespaceGateway is the configurable namespace with locale and field
	// restrictions.
	NamespaceGateway
)

func (n Namespace) String() string {
	if n == NamespaceGateway {
		return "gateway"
	}
	return "standard"
}

// SyntheticPermission returns the name of the per resource type view
// permission, for example "view gateway node--article".
func SyntheticPermission(namespaceName string, key resource.Key) string {
	return "view " + namespaceName + " " + key.String()
}
