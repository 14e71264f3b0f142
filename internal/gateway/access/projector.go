package access

import (
	"slices"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// FieldProjector selects the fields of a resource object that are serialized.
type FieldProjector interface {
	Project(rt resource.Type, requested []string, cfg *policy.Config, ns Namespace) []string
}

// PolicyProjector removes the administratively disabled fields.
type PolicyProjector struct{}

func (PolicyProjector) Project(rt resource.Type, requested []string, cfg *policy.Config, ns Namespace) []string {
	return ProjectFields(rt, requested, cfg, ns)
}

// ProjectFields returns requested, or every field of rt when requested is
// empty, restricted to known fields and without the fields disabled for rt in
// the gateway namespace. Order follows the input; duplicates are dropped.
func ProjectFields(rt resource.Type, requested []string, cfg *policy.Config, ns Namespace) []string {
	if len(requested) == 0 {
		requested = rt.Fields
	}
	var disabled []string
	if ns == NamespaceGateway {
		disabled = cfg.DisabledFieldsFor(rt.Key)
	}
	out := make([]string, 0, len(requested))
	for _, f := range requested {
		if !rt.HasField(f) || slices.Contains(disabled, f) || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
