package core

import (
	"fmt"
	"time"
)

// PrimitiveType is a value type the coercion runtime can convert to and check.
type PrimitiveType string

// Primitive types.
const (
	TypeString   PrimitiveType = "string"
	TypeInteger  PrimitiveType = "integer"
	TypeFloat    PrimitiveType = "float"
	TypeBoolean  PrimitiveType = "boolean"
	TypeDatetime PrimitiveType = "datetime"
)

// Valid reports whether t is one of the declared primitive types.
func (t PrimitiveType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime:
		return true
	}
	return false
}

// nullSentinels are the exact field values treated as "absent".
var nullSentinels = map[string]struct{}{
	"":               {},
	"NA":             {},
	"Not applicable": {},
	"null":           {},
}

// NullSentinels returns the sentinel strings in a stable order.
func NullSentinels() []string {
	return []string{"", "NA", "Not applicable", "null"}
}

// IsNullSentinel reports whether s exactly matches a null sentinel.
func IsNullSentinel(s string) bool {
	_, ok := nullSentinels[s]
	return ok
}

// IsAbsent reports whether a dataset cell value counts as missing: nil, or a
// string that exactly matches a null sentinel.
func IsAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return IsNullSentinel(x)
	default:
		return false
	}
}

// TypeName returns the runtime type name used in diagnostics, e.g. "str".
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case time.Time:
		return "datetime"
	default:
		return fmt.Sprintf("%T", v)
	}
}
