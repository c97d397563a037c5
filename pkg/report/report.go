package report

import (
	"errors"
	"fmt"
	"maps"

	"github.com/leapstack-labs/odmval/pkg/version"
)

// ErrVersionMismatch is returned when joining reports of different versions.
var ErrVersionMismatch = errors.New("reports have different versions")

// TableInfo holds the size of a validated table.
type TableInfo struct {
	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`
}

// ValidationReport is the outcome of validating a dataset.
type ValidationReport struct {
	DatasetVersion version.Version      `json:"data_version" yaml:"data_version"`
	SchemaVersion  version.Version      `json:"schema_version" yaml:"schema_version"`
	PackageVersion string               `json:"package_version" yaml:"package_version"`
	Tables         map[string]TableInfo `json:"table_info" yaml:"table_info"`
	Errors         []Diagnostic         `json:"errors" yaml:"errors"`
	Warnings       []Diagnostic         `json:"warnings" yaml:"warnings"`
}

// Valid reports whether the report has no errors. Warnings do not count.
func (r *ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Join concatenates two reports of the same dataset and schema versions,
// produced by the same package version when both record one.
// Table statistics are merged: rows add up and the wider column count wins.
func Join(a, b *ValidationReport) (*ValidationReport, error) {
	if a.DatasetVersion != b.DatasetVersion || a.SchemaVersion != b.SchemaVersion {
		return nil, fmt.Errorf("%w: data %s/%s, schema %s/%s", ErrVersionMismatch,
			a.DatasetVersion, b.DatasetVersion, a.SchemaVersion, b.SchemaVersion)
	}
	if a.PackageVersion != "" && b.PackageVersion != "" && a.PackageVersion != b.PackageVersion {
		return nil, fmt.Errorf("%w: package %s/%s", ErrVersionMismatch, a.PackageVersion, b.PackageVersion)
	}
	out := &ValidationReport{
		DatasetVersion: a.DatasetVersion,
		SchemaVersion:  a.SchemaVersion,
		PackageVersion: a.PackageVersion,
		Tables:         make(map[string]TableInfo, len(a.Tables)+len(b.Tables)),
	}
	if out.PackageVersion == "" {
		out.PackageVersion = b.PackageVersion
	}
	maps.Copy(out.Tables, a.Tables)
	for id, info := range b.Tables {
		cur := out.Tables[id]
		out.Tables[id] = TableInfo{Rows: cur.Rows + info.Rows, Columns: max(cur.Columns, info.Columns)}
	}
	out.Errors = append(append([]Diagnostic(nil), a.Errors...), b.Errors...)
	out.Warnings = append(append([]Diagnostic(nil), a.Warnings...), b.Warnings...)
	return out, nil
}
