package access

import (
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
)

// Operation is an entity operation checked against the permission system.
type Operation string

const (
	OperationView             Operation = "view"
	OperationViewLabel        Operation = "view label"
	OperationViewAllRevisions Operation = "view all revisions"
	OperationViewUnpublished  Operation = "view unpublished"
	OperationUpdate           Operation = "update"
	OperationDelete           Operation = "delete"
)

// IsMutating reports whether the operation changes the entity.
func (o Operation) IsMutating() bool {
	return o == OperationUpdate || o == OperationDelete
}

// AccessResult is the answer of the permission system for one check.
type AccessResult struct {
	Allowed      bool
	Reason       string
	Cacheability Cacheability
}

// PermissionChecker is the general capability system the gateway defers to
// before applying its own restrictions.
type PermissionChecker interface {
	// HasCapability reports whether the principal holds a global capability.
	HasCapability(p Principal, capability string) bool
	// EntityAccess checks an operation on a concrete entity.
	EntityAccess(p Principal, e *content.Entity, op Operation) AccessResult
}
