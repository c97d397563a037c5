// Package dictionary turns raw data dictionary rows into a resolved,
// version-filtered Model.
//
// # Inputs
//
// The dictionary is two tables of string rows:
//
//   - parts: one row per table, attribute, category or missingness value
//   - sets:  membership rows linking a category set id to category parts
//
// # Build steps
//
// Build runs the following steps in order:
//
//  1. strip null sentinels from every field except identifiers
//  2. apply version-specific patches for known dictionary inconsistencies
//  3. keep parts and sets whose release interval contains the target version
//  4. for legacy targets, drop parts that lack a legacy mapping (logged)
//  5. resolve table to attribute membership
//  6. resolve category sets per attribute
//
// The resulting Model is immutable and is read by every rule in pkg/rules.
package dictionary
