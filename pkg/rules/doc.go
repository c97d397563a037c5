// Package rules holds the fixed, ordered ruleset that compiles a dictionary
// model into a validation schema.
//
// Each rule is a RuleDef whose Compile function reads only the model and
// returns a schema fragment. Compile merges the fragments of every rule the
// Filter allows, in ruleset order, so provenance lists are reproducible.
package rules
