package access

import (
	"fmt"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// Evaluator decides access to a single entity.
type Evaluator interface {
	Evaluate(e *content.Entity, op Operation, p Principal, cfg *policy.Config, ns Namespace) Decision
}

// PreconditionViolation is raised with panic when an evaluation is requested
// that the gateway does not support. It is a programming error and must not
// be turned into a response.
type PreconditionViolation struct {
	Operation Operation
	Entity    string
	Revision  int64
}

func (v *PreconditionViolation) Error() string {
	return fmt.Sprintf("operation '%s' is not supported on revision %d of %s", v.Operation, v.Revision, v.Entity)
}

// EntityEvaluator combines the permission system, revision access and the
// role grants of the settings into one decision.
type EntityEvaluator struct {
	catalog resource.Catalog
	perms   PermissionChecker
}

// NewEntityEvaluator returns an evaluator.
func NewEntityEvaluator(catalog resource.Catalog, perms PermissionChecker) *EntityEvaluator {
	return &EntityEvaluator{catalog: catalog, perms: perms}
}

// Evaluate returns Allowed, LabelOnly or Denied. Mutating operations on a
// revision that is not the default one panic with *PreconditionViolation.
func (ev *EntityEvaluator) Evaluate(e *content.Entity, op Operation, p Principal, cfg *policy.Config, ns Namespace) Decision {
	if op.IsMutating() && !e.IsDefaultRevision() {
		panic(&PreconditionViolation{Operation: op, Entity: e.Type.String() + "/" + e.ID, Revision: e.RevisionID})
	}
	versionable := ev.isVersionable(e.Type)

	access := ev.checkEntityAccess(e, op, p, cfg, versionable)
	cache := NewCacheability([]string{ContextLanguages, ContextURL}, nil).Merge(access.Cacheability)

	if !access.Allowed {
		if !versionable || e.IsDefaultRevision() {
			label := ev.perms.EntityAccess(p, e, OperationViewLabel)
			cache = cache.Merge(label.Cacheability)
			if label.Allowed {
				return LabelOnly(cache)
			}
		}
		return Denied(access.Reason, cache)
	}

	if ns == NamespaceGateway && cfg.IsLocaleDisabledFor(e.Type, e.Langcode) {
		return Denied(LocaleDisabledReason, cache.WithTags(TagSettings))
	}
	return Allowed(cache)
}

func (ev *EntityEvaluator) isVersionable(key resource.Key) bool {
	rt, err := ev.catalog.Get(key)
	return err == nil && rt.Versionable
}

func (ev *EntityEvaluator) checkEntityAccess(e *content.Entity, op Operation, p Principal, cfg *policy.Config, versionable bool) AccessResult {
	access := ev.perms.EntityAccess(p, e, op)

	if versionable {
		access.Cacheability = access.Cacheability.WithContexts(ContextResourceVersion)
		if !e.IsDefaultRevision() {
			revision := ev.perms.EntityAccess(p, e, OperationViewAllRevisions)
			combined := AccessResult{
				Allowed:      access.Allowed && revision.Allowed,
				Cacheability: access.Cacheability.Merge(revision.Cacheability),
			}
			if !combined.Allowed {
				reason := access.Reason
				if !revision.Allowed {
					reason = revision.Reason
				}
				combined.Reason = RevisionDeniedPrefix + " " + reason
			}
			access = combined
		}
	}

	grantCache := NewCacheability([]string{ContextUserRoles}, []string{TagSettings})
	if !HasResourceGrant(p, e.Type, cfg) {
		return AccessResult{Reason: NoGrantReason, Cacheability: access.Cacheability.Merge(grantCache)}
	}
	access.Cacheability = access.Cacheability.Merge(grantCache)
	return access
}
