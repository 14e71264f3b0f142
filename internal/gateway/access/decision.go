package access

import "strings"

const (
	// DeniedMessage is the message of every denied entity decision.
	DeniedMessage = "the current principal is not allowed to view the selected resource."
	// NoGrantReason is reported when no role of the principal is granted the
	// resource type.
	NoGrantReason = "no configured role grants access to this resource"
	// RevisionDeniedPrefix starts the reason of a failed revision check.
	RevisionDeniedPrefix = "access to the requested version is denied."
	// LocaleDisabledReason is reported when the entity language is withheld.
	LocaleDisabledReason = "the requested locale is disabled for this resource type"
)

// Outcome is the kind of an access decision.
type Outcome int

const (
	OutcomeDenied Outcome = iota
	OutcomeLabelOnly
	OutcomeAllowed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllowed:
		return "allowed"
	case OutcomeLabelOnly:
		return "label_only"
	}
	return "denied"
}

// Decision is the result of evaluating access to one entity. Decisions are
// values and are never changed after construction.
type Decision struct {
	outcome      Outcome
	reason       string
	cacheability Cacheability
}

// Allowed grants full access.
func Allowed(c Cacheability) Decision {
	return Decision{outcome: OutcomeAllowed, cacheability: c}
}

// LabelOnly grants access to the id and label of the entity only.
func LabelOnly(c Cacheability) Decision {
	return Decision{outcome: OutcomeLabelOnly, cacheability: c}
}

// Denied refuses access for reason.
func Denied(reason string, c Cacheability) Decision {
	return Decision{outcome: OutcomeDenied, reason: strings.TrimSpace(reason), cacheability: c}
}

func (d Decision) Outcome() Outcome { return d.outcome }

func (d Decision) IsAllowed() bool { return d.outcome == OutcomeAllowed }

func (d Decision) IsLabelOnly() bool { return d.outcome == OutcomeLabelOnly }

func (d Decision) IsDenied() bool { return d.outcome == OutcomeDenied }

// Reason is the detailed cause of a denial.
func (d Decision) Reason() string { return d.reason }

// Message is the fixed user facing message of a denial, empty otherwise.
func (d Decision) Message() string {
	if d.outcome == OutcomeDenied {
		return DeniedMessage
	}
	return ""
}

func (d Decision) Cacheability() Cacheability { return d.cacheability }
