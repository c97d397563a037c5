// Package summary aggregates a validation report into per-rule counts
// grouped by table, column or row.
package summary

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// AllRules is the rule name of the per-group total.
const AllRules = "all"

// Key is a grouping key.
type Key string

// Grouping keys. Columns and rows are grouped within their table.
const (
	KeyTable  Key = "table"
	KeyColumn Key = "column"
	KeyRow    Key = "row"
)

// Keys returns every grouping key.
func Keys() []Key {
	return []Key{KeyTable, KeyColumn, KeyRow}
}

// ParseKey converts a key name.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Keys(), k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown summary key %q (expected table, column or row)", s)
}

// GroupCount is the number of diagnostics of one rule in one group. Column
// and Row are only set for the keys that group by them.
type GroupCount struct {
	Table  string `json:"table_id" yaml:"table_id"`
	Column string `json:"column_id,omitempty" yaml:"column_id,omitempty"`
	Row    int    `json:"row_number,omitempty" yaml:"row_number,omitempty"`
	Rule   string `json:"rule_id" yaml:"rule_id"`
	Count  int    `json:"count" yaml:"count"`
}

// KeySummary holds the counts for one grouping key.
type KeySummary struct {
	Errors   []GroupCount `json:"errors" yaml:"errors"`
	Warnings []GroupCount `json:"warnings" yaml:"warnings"`
}

// RuleTotal is the dataset-wide count of one rule.
type RuleTotal struct {
	Rule     string `json:"rule_id" yaml:"rule_id"`
	Errors   int    `json:"errors" yaml:"errors"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

// Overview describes the whole dataset.
type Overview struct {
	Tables   map[string]report.TableInfo `json:"tables" yaml:"tables"`
	Rules    []RuleTotal                 `json:"rules" yaml:"rules"`
	Errors   int                         `json:"errors" yaml:"errors"`
	Warnings int                         `json:"warnings" yaml:"warnings"`
}

// SummarizedReport is a report reduced to counts.
type SummarizedReport struct {
	DatasetVersion version.Version    `json:"data_version" yaml:"data_version"`
	SchemaVersion  version.Version    `json:"schema_version" yaml:"schema_version"`
	Overview       Overview           `json:"overview" yaml:"overview"`
	Summaries      map[Key]KeySummary `json:"summaries" yaml:"summaries"`
}

// Summarize counts the diagnostics of r under each key. Keys are
// independent; each produces its own summary.
func Summarize(r *report.ValidationReport, keys ...Key) (*SummarizedReport, error) {
	s := &SummarizedReport{
		DatasetVersion: r.DatasetVersion,
		SchemaVersion:  r.SchemaVersion,
		Overview:       overview(r),
		Summaries:      make(map[Key]KeySummary, len(keys)),
	}
	for _, k := range keys {
		if !slices.Contains(Keys(), k) {
			return nil, fmt.Errorf("unknown summary key %q", k)
		}
		s.Summaries[k] = KeySummary{
			Errors:   count(r.Errors, k),
			Warnings: count(r.Warnings, k),
		}
	}
	return s, nil
}

func overview(r *report.ValidationReport) Overview {
	o := Overview{
		Tables:   make(map[string]report.TableInfo, len(r.Tables)),
		Errors:   len(r.Errors),
		Warnings: len(r.Warnings),
	}
	for id, info := range r.Tables {
		o.Tables[id] = info
	}
	for _, id := range core.AllRuleIDs() {
		t := RuleTotal{Rule: id.String()}
		for _, d := range r.Errors {
			if d.Rule == id {
				t.Errors++
			}
		}
		for _, d := range r.Warnings {
			if d.Rule == id {
				t.Warnings++
			}
		}
		if t.Errors+t.Warnings > 0 {
			o.Rules = append(o.Rules, t)
		}
	}
	return o
}

// group identifies one group under a key.
type group struct {
	table  string
	column string
	row    int
}

func groupOf(d report.Diagnostic, k Key) group {
	switch k {
	case KeyColumn:
		return group{table: d.Table, column: d.Column}
	case KeyRow:
		return group{table: d.Table, row: d.RowNumber}
	default:
		return group{table: d.Table}
	}
}

// count returns, per group in sorted order, one entry per rule in ruleset
// order followed by the group total.
func count(ds []report.Diagnostic, k Key) []GroupCount {
	perRule := make(map[group]map[core.RuleID]int)
	for _, d := range ds {
		g := groupOf(d, k)
		if perRule[g] == nil {
			perRule[g] = make(map[core.RuleID]int)
		}
		perRule[g][d.Rule]++
	}

	groups := make([]group, 0, len(perRule))
	for g := range perRule {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b group) int {
		return cmp.Or(
			cmp.Compare(a.table, b.table),
			cmp.Compare(a.column, b.column),
			cmp.Compare(a.row, b.row),
		)
	})

	var out []GroupCount
	for _, g := range groups {
		total := 0
		for _, id := range core.AllRuleIDs() {
			n := perRule[g][id]
			if n == 0 {
				continue
			}
			total += n
			out = append(out, GroupCount{Table: g.table, Column: g.column, Row: g.row, Rule: id.String(), Count: n})
		}
		out = append(out, GroupCount{Table: g.table, Column: g.column, Row: g.row, Rule: AllRules, Count: total})
	}
	return out
}
