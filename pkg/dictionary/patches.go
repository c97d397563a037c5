package dictionary

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/odmval/pkg/version"
)

// patch fixes a known inconsistency in published dictionary data. Patches
// are data: a predicate on the target version plus row rewrites.
type patch struct {
	name    string
	applies func(target version.Version) bool
	part    func(RawRow)
	set     func(RawRow)
}

var patches = []patch{
	{
		name:    "boolean-category-case",
		applies: func(version.Version) bool { return true },
		part:    lowerBooleanID(FieldPartID),
		set:     lowerBooleanID(FieldPartID),
	},
	{
		name: "v1.1-short-versions",
		applies: func(v version.Version) bool {
			return v.Major == 1 && v.Minor == 1
		},
		part: padShortVersions,
		set:  padShortVersions,
	},
}

// booleanIDs are the category identifiers published in upper case by some
// dictionary releases.
var booleanIDs = map[string]bool{"TRUE": true, "FALSE": true}

func lowerBooleanID(field string) func(RawRow) {
	return func(row RawRow) {
		if v, ok := row[field]; ok && booleanIDs[v] {
			row[field] = cases.Lower(language.Und).String(v)
		}
	}
}

var shortVersion = regexp.MustCompile(`^\d+\.\d+$`)

func padShortVersions(row RawRow) {
	for _, f := range []string{FieldFirstReleased, FieldLastUpdated} {
		if v, ok := row[f]; ok && shortVersion.MatchString(strings.TrimSpace(v)) {
			row[f] = strings.TrimSpace(v) + ".0"
		}
	}
}

// applyPatches rewrites rows in place and returns the names of the patches
// that were applicable to the target.
func applyPatches(target version.Version, parts, sets []RawRow) []string {
	var applied []string
	for _, p := range patches {
		if !p.applies(target) {
			continue
		}
		applied = append(applied, p.name)
		if p.part != nil {
			for _, row := range parts {
				p.part(row)
			}
		}
		if p.set != nil {
			for _, row := range sets {
				p.set(row)
			}
		}
	}
	return applied
}
