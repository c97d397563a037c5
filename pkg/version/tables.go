package version

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tableFiles embed.FS

type tableIndex struct {
	Major  int      `yaml:"major"`
	Tables []string `yaml:"tables"`
}

var (
	indexOnce sync.Once
	indexes   map[int][]string
	indexErr  error
)

func loadIndexes() (map[int][]string, error) {
	indexOnce.Do(func() {
		entries, err := tableFiles.ReadDir("tables")
		if err != nil {
			indexErr = err
			return
		}
		indexes = make(map[int][]string, len(entries))
		for _, e := range entries {
			data, err := tableFiles.ReadFile(path.Join("tables", e.Name()))
			if err != nil {
				indexErr = err
				return
			}
			var idx tableIndex
			if err := yaml.Unmarshal(data, &idx); err != nil {
				indexErr = fmt.Errorf("parse table index %s: %w", e.Name(), err)
				return
			}
			indexes[idx.Major] = idx.Tables
		}
	})
	return indexes, indexErr
}

// Majors returns the major versions that ship a table-name index, ascending.
func Majors() []int {
	idx, err := loadIndexes()
	if err != nil {
		return nil
	}
	majors := make([]int, 0, len(idx))
	for m := range idx {
		majors = append(majors, m)
	}
	sort.Ints(majors)
	return majors
}

// TableIDs returns the known table identifiers for a major version.
func TableIDs(major int) ([]string, error) {
	idx, err := loadIndexes()
	if err != nil {
		return nil, err
	}
	tables, ok := idx[major]
	if !ok {
		return nil, fmt.Errorf("no table index for major version %d", major)
	}
	return append([]string(nil), tables...), nil
}

// InferTableID maps a filename stem such as "ottawa_samples" to a table id of
// the given version. The longest table id that the stem ends with wins, so
// "sampleRelationships" is not mistaken for "samples" or "relationships".
// Matching ignores case; the returned id uses the index spelling.
func InferTableID(stem string, v Version) (string, bool) {
	tables, err := TableIDs(v.Major)
	if err != nil {
		return "", false
	}
	lower := strings.ToLower(stem)
	best := ""
	for _, id := range tables {
		if strings.HasSuffix(lower, strings.ToLower(id)) && len(id) > len(best) {
			best = id
		}
	}
	return best, best != ""
}
