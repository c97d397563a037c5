// Package core defines the shared language of the odmval system.
//
// This package contains:
//   - Rule identifiers (RuleID) and their serialized names
//   - Diagnostic severities
//   - Primitive value types understood by the coercion runtime
//   - The null sentinel set used to decide whether a value is absent
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
