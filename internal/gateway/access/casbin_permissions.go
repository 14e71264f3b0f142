package access

import (
	"fmt"
	"log"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
)

// globalObject is the policy object of capabilities that are not bound to a
// resource type.
const globalObject = "*"

// CasbinPermissions answers permission checks from a casbin model with
// request definition (sub, obj, act). Subjects are "role:<id>", objects are
// resource type keys and actions are operation names.
type CasbinPermissions struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinPermissions loads the model and the CSV policy file.
func NewCasbinPermissions(modelPath, policyPath string) (*CasbinPermissions, error) {
	log.Printf("📁 Loading permission model from %s and policy from %s", modelPath, policyPath)
	enforcer, err := casbin.NewSyncedEnforcer(modelPath, fileadapter.NewAdapter(policyPath))
	if err != nil {
		return nil, fmt.Errorf("GW-PERMS-LOAD: %w", err)
	}
	return &CasbinPermissions{enforcer: enforcer}, nil
}

// Reload re-reads the policy file.
func (c *CasbinPermissions) Reload() error {
	if err := c.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("GW-PERMS-POLICY: %w", err)
	}
	return nil
}

// SubjectFromRole maps a role id to its policy subject.
func SubjectFromRole(roleID string) string {
	roleID = common.NormalizeRoleID(roleID)
	if roleID == "" {
		roleID = "anonymous"
	}
	return "role:" + roleID
}

func (c *CasbinPermissions) HasCapability(p Principal, capability string) bool {
	if p.IsAdmin() {
		return true
	}
	return c.anyRole(p, globalObject, capability)
}

func (c *CasbinPermissions) EntityAccess(p Principal, e *content.Entity, op Operation) AccessResult {
	cache := NewCacheability([]string{ContextUserRoles}, []string{TagPermissions, EntityTag(e.Type.EntityType(), e.ID)})
	if p.IsAdmin() {
		return AccessResult{Allowed: true, Cacheability: cache}
	}
	if !c.anyRole(p, e.Type.String(), string(op)) {
		return AccessResult{
			Reason:       fmt.Sprintf("the '%s' permission is required on %s", op, e.Type),
			Cacheability: cache,
		}
	}
	if op == OperationView && !e.Published && !c.anyRole(p, e.Type.String(), string(OperationViewUnpublished)) {
		return AccessResult{
			Reason:       fmt.Sprintf("the '%s' permission is required on %s", OperationViewUnpublished, e.Type),
			Cacheability: cache,
		}
	}
	return AccessResult{Allowed: true, Cacheability: cache}
}

func (c *CasbinPermissions) anyRole(p Principal, object, action string) bool {
	for _, role := range p.Roles {
		ok, err := c.enforcer.Enforce(SubjectFromRole(role.ID), object, action)
		if err != nil {
			log.Printf("❌ Permission check failed for role %s: %v", role.ID, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
