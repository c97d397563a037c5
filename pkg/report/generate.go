package report

import (
	"cmp"
	"slices"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/validate"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// Options configures report generation.
type Options struct {
	Verbosity Verbosity
	// Filter drops violations of rules it does not allow.
	Filter rules.Filter
	// PackageVersion is recorded in the report.
	PackageVersion string
}

// DefaultOptions returns options with the default verbosity.
func DefaultOptions() Options {
	return Options{Verbosity: DefaultVerbosity}
}

// pending is a violation with the rule it is reported under.
type pending struct {
	v    validate.Violation
	rule rules.RuleDef
}

// Generate builds the report of a validation result.
func Generate(res *validate.Result, opts Options) *ValidationReport {
	r := &ValidationReport{
		DatasetVersion: res.DatasetVersion,
		SchemaVersion:  res.SchemaVersion,
		PackageVersion: opts.PackageVersion,
		Tables:         make(map[string]TableInfo, len(res.Tables)),
	}
	for _, t := range res.Tables {
		r.Tables[t.ID] = TableInfo{Rows: t.Rows, Columns: t.Columns}
	}

	var all []Diagnostic
	for _, t := range res.Tables {
		for _, p := range dedupe(firstRowOnly(attribute(t.Violations, opts.Filter))) {
			all = append(all, newDiagnostic(p, opts.Verbosity))
		}
	}
	sortDiagnostics(all)

	for _, d := range all {
		if d.Kind == core.SeverityWarning {
			r.Warnings = append(r.Warnings, d)
		} else {
			r.Errors = append(r.Errors, d)
		}
	}
	return r
}

// Empty returns a report with no tables and no diagnostics.
func Empty(dataset, schemaVersion version.Version, pkg string) *ValidationReport {
	return &ValidationReport{
		DatasetVersion: dataset,
		SchemaVersion:  schemaVersion,
		PackageVersion: pkg,
		Tables:         make(map[string]TableInfo),
	}
}

// attribute assigns each violation the first rule of its provenance that the
// filter allows, and drops violations with none.
func attribute(vs []validate.Violation, f rules.Filter) []pending {
	out := make([]pending, 0, len(vs))
	for _, v := range vs {
		for _, id := range v.Rules() {
			if !f.Allows(id) {
				continue
			}
			if def, ok := rules.Get(id); ok {
				out = append(out, pending{v: v, rule: def})
				break
			}
		}
	}
	return out
}

// firstRowOnly keeps, for spreadsheet data, only the first row of each
// column-scoped finding. Such rules fire on every row alike.
func firstRowOnly(ps []pending) []pending {
	type key struct {
		column string
		rule   core.RuleID
	}
	first := make(map[key]int)
	for _, p := range ps {
		if p.v.Origin != validate.OriginSpreadsheet || !p.rule.ColumnScoped {
			continue
		}
		k := key{p.v.Column, p.rule.ID}
		if row, ok := first[k]; !ok || p.v.Row < row {
			first[k] = p.v.Row
		}
	}
	if len(first) == 0 {
		return ps
	}
	out := ps[:0:0]
	for _, p := range ps {
		if p.v.Origin == validate.OriginSpreadsheet && p.rule.ColumnScoped &&
			first[key{p.v.Column, p.rule.ID}] != p.v.Row {
			continue
		}
		out = append(out, p)
	}
	return out
}

// dedupe drops coercion findings on cells that also have a type finding.
func dedupe(ps []pending) []pending {
	type cell struct {
		row    int
		column string
	}
	typed := make(map[cell]bool)
	for _, p := range ps {
		if p.v.Kind == validate.ViolationConstraint && p.v.Constraint.Kind == schema.KindType {
			typed[cell{p.v.Row, p.v.Column}] = true
		}
	}
	if len(typed) == 0 {
		return ps
	}
	out := ps[:0:0]
	for _, p := range ps {
		if p.v.Kind != validate.ViolationConstraint && typed[cell{p.v.Row, p.v.Column}] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func newDiagnostic(p pending, verbosity Verbosity) Diagnostic {
	row := p.v.Row + 1
	if p.v.Origin == validate.OriginSpreadsheet {
		row++
	}
	d := Diagnostic{
		Kind:      p.v.Severity(),
		Table:     p.v.Table,
		Column:    p.v.Column,
		RowNumber: row,
		Row:       p.v.Snapshot,
		Rule:      p.rule.ID,
		Message:   renderMessage(p.v, p.rule, row, verbosity),
	}
	if p.v.Value != nil {
		d.InvalidValue = p.v.Value
	}
	return d
}

// sortDiagnostics orders by table, row and column, then by rule order, with
// errors before warnings.
func sortDiagnostics(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Table, b.Table),
			cmp.Compare(a.RowNumber, b.RowNumber),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Rule, b.Rule),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Message, b.Message),
		)
	})
}
