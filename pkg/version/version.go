// Package version parses dictionary versions and answers questions about the
// dictionary releases this build knows about.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// CurrentMajor is the major version of the current dictionary lineage.
// Anything below it belongs to the legacy lineage.
const CurrentMajor = 2

// ErrMalformed is returned when a version string is not major.minor.patch.
var ErrMalformed = errors.New("malformed version")

// knownVersions lists released dictionary versions in ascending order.
var knownVersions = []string{"1.0.0", "1.1.0", "2.0.0", "2.1.0"}

// Version is a major.minor.patch dictionary version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses "major.minor.patch", with an optional leading "v".
// Pre-release and build suffixes are rejected.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	tag := "v" + raw
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || !semver.IsValid(tag) || semver.Prerelease(tag) != "" || semver.Build(tag) != "" {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on malformed input. Only for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) tag() string {
	return "v" + v.String()
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after o.
func (v Version) Compare(o Version) int {
	return semver.Compare(v.tag(), o.tag())
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// IsLegacy reports whether v belongs to the legacy lineage.
func (v Version) IsLegacy() bool {
	return v.Major < CurrentMajor
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return v == Version{}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Known returns the released dictionary versions in ascending order.
func Known() []Version {
	out := make([]Version, 0, len(knownVersions))
	for _, s := range knownVersions {
		out = append(out, MustParse(s))
	}
	return out
}

// Latest returns the latest known dictionary version.
func Latest() Version {
	return MustParse(knownVersions[len(knownVersions)-1])
}

// IsKnown reports whether v is a released dictionary version.
func IsKnown(v Version) bool {
	for _, k := range Known() {
		if k == v {
			return true
		}
	}
	return false
}

// UnknownVersionError is returned when a caller asks for a dictionary release
// that this build has no data for.
type UnknownVersionError struct {
	Version   string
	Available []string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown dictionary version %q (available: %s)",
		e.Version, strings.Join(e.Available, ", "))
}

// Resolve parses s and checks that it is a known release.
func Resolve(s string) (Version, error) {
	v, err := Parse(s)
	if err != nil {
		return Version{}, err
	}
	if !IsKnown(v) {
		return Version{}, &UnknownVersionError{Version: s, Available: append([]string(nil), knownVersions...)}
	}
	return v, nil
}
