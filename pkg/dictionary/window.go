package dictionary

import (
	"github.com/leapstack-labs/odmval/pkg/version"
)

// defaultReleased applies to parts and sets without a firstReleased field.
var defaultReleased = version.MustParse("1.0.0")

// span is the release window of a part or set row.
type span struct {
	first  version.Version
	end    version.Version
	active bool
}

// contains reports whether target lies in [first, end). An active row is
// also kept at exactly end, since end is then the latest release rather
// than a deprecation.
func (s span) contains(target version.Version) bool {
	if target.Less(s.first) {
		return false
	}
	c := target.Compare(s.end)
	return c < 0 || (c == 0 && s.active)
}

// resolveSpan parses the version fields of one row. Present fields must
// parse; absent ones fall back to defaults.
func resolveSpan(id, first, last string, active bool, latest version.Version) (span, error) {
	s := span{first: defaultReleased, end: latest, active: active}
	if first != "" {
		v, err := version.Parse(first)
		if err != nil {
			return span{}, &MalformedVersionError{PartID: id, Field: FieldFirstReleased, Value: first, Err: err}
		}
		s.first = v
	}
	if last != "" {
		v, err := version.Parse(last)
		if err != nil {
			return span{}, &MalformedVersionError{PartID: id, Field: FieldLastUpdated, Value: last, Err: err}
		}
		if !active {
			s.end = v
		}
	}
	if s.end.Less(s.first) {
		return span{}, &VersionRangeError{PartID: id, FirstReleased: s.first, End: s.end}
	}
	return s, nil
}

func isActive(status string) bool {
	p := Part{Status: status}
	return p.Active()
}
