// Package schema defines the compiled validation schema: per table, a row
// shape and a set of typed constraints per column, each tagged with the rule
// and dictionary parts that produced it.
//
// Constraints form a closed set of kinds. Schemas are combined with Merge,
// which never overwrites: a constraint produced twice with the same
// parameters accumulates provenance instead.
package schema
