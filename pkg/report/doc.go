// Package report turns raw validation violations into diagnostics and
// collects them into a ValidationReport.
//
// Generation applies the rule filter, keeps only the first row of
// column-scoped findings for spreadsheet data, drops coercion findings that
// a type finding on the same cell already covers, renders messages at the
// requested verbosity and sorts the result by table, row and column.
package report
