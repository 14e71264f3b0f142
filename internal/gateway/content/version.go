package content

import (
	"strconv"
	"strings"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// VersionKind selects how a revision is addressed.
type VersionKind int

const (
	// VersionDefault addresses the default revision.
	VersionDefault VersionKind = iota
	// VersionByID addresses one revision id.
	VersionByID
	// VersionWorkingCopy addresses the newest revision.
	VersionWorkingCopy
)

// Version identifies a revision as given in the resourceVersion query
// parameter: "id:<revision>", "rel:latest-version" or "rel:working-copy".
type Version struct {
	Kind       VersionKind
	RevisionID int64
}

// ParseVersion parses the resourceVersion query parameter. An empty value
// selects the default revision.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{Kind: VersionDefault}, nil
	}
	negotiator, arg, ok := strings.Cut(s, ":")
	if !ok {
		return Version{}, common.NewErrBadRequest("resourceVersion must be <negotiator>:<argument>")
	}
	switch negotiator {
	case "id":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return Version{}, common.NewErrBadRequest("resourceVersion id must be a positive integer")
		}
		return Version{Kind: VersionByID, RevisionID: id}, nil
	case "rel":
		switch arg {
		case "latest-version":
			return Version{Kind: VersionDefault}, nil
		case "working-copy":
			return Version{Kind: VersionWorkingCopy}, nil
		}
		return Version{}, common.NewErrBadRequest("unknown resourceVersion relation '" + arg + "'")
	}
	return Version{}, common.NewErrBadRequest("unknown resourceVersion negotiator '" + negotiator + "'")
}

// String renders the version in query parameter form.
func (v Version) String() string {
	switch v.Kind {
	case VersionByID:
		return "id:" + strconv.FormatInt(v.RevisionID, 10)
	case VersionWorkingCopy:
		return "rel:working-copy"
	}
	return "rel:latest-version"
}
