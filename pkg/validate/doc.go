// Package validate runs a compiled schema against a dataset.
//
// Each table goes through two passes. The coercion pass converts cells
// governed by a coerce constraint into a working copy of the rows, recording
// a warning for each converted cell and an error for each cell that cannot
// be converted. The constraint pass then checks every constraint against the
// working copy. The input rows are never modified.
//
// Rows are checked in batches on a bounded worker pool and tables run
// concurrently. Violations of a table come back batch by batch; ordering for
// display is left to the report package.
package validate
