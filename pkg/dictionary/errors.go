package dictionary

import (
	"fmt"

	"github.com/leapstack-labs/odmval/pkg/version"
)

// MalformedVersionError reports a version field that could not be parsed.
// Absent fields never produce this error; a default applies instead.
type MalformedVersionError struct {
	PartID string
	Field  string
	Value  string
	Err    error
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("part %q: malformed version in %s: %q", e.PartID, e.Field, e.Value)
}

func (e *MalformedVersionError) Unwrap() error { return e.Err }

// MalformedFieldError reports a non-version field whose value cannot be used,
// such as a non-numeric bound or an unknown data type.
type MalformedFieldError struct {
	PartID string
	Field  string
	Value  string
	Err    error
}

func (e *MalformedFieldError) Error() string {
	if e.PartID == "" {
		return fmt.Sprintf("malformed %s: %q", e.Field, e.Value)
	}
	return fmt.Sprintf("part %q: malformed %s: %q", e.PartID, e.Field, e.Value)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// VersionRangeError reports a part released after its effective end.
type VersionRangeError struct {
	PartID        string
	FirstReleased version.Version
	End           version.Version
}

func (e *VersionRangeError) Error() string {
	return fmt.Sprintf("part %q: firstReleased %s is after effective end %s",
		e.PartID, e.FirstReleased, e.End)
}

// DuplicatePartError reports a partID that appears more than once.
type DuplicatePartError struct {
	PartID string
}

func (e *DuplicatePartError) Error() string {
	return fmt.Sprintf("duplicate partID %q", e.PartID)
}
