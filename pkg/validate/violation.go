package validate

import (
	"fmt"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// ViolationKind distinguishes the passes a violation comes from.
type ViolationKind int

const (
	// ViolationConstraint is a failed constraint in the constraint pass.
	ViolationConstraint ViolationKind = iota
	// ViolationCoerced is a cell converted by the coercion pass.
	ViolationCoerced
	// ViolationCoerceFailed is a cell the coercion pass could not convert.
	ViolationCoerceFailed
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationConstraint:
		return "constraint"
	case ViolationCoerced:
		return "coerced"
	case ViolationCoerceFailed:
		return "coerce_failed"
	default:
		return fmt.Sprintf("violation(%d)", int(k))
	}
}

// Violation is one raw finding, before rendering into a diagnostic.
type Violation struct {
	Kind   ViolationKind
	Table  string
	Column string
	// Row is the zero-based index of the row in its table.
	Row    int
	Origin Origin
	// Snapshot is the row as supplied, before coercion.
	Snapshot Row
	// Value is the offending value: the original cell for coercion
	// violations, the working-copy cell otherwise. Nil when the column is
	// missing.
	Value any
	// Coerced is the converted value of a ViolationCoerced.
	Coerced    any
	Constraint schema.Constraint
}

// Severity returns warning for converted cells and error otherwise.
func (v Violation) Severity() core.Severity {
	if v.Kind == ViolationCoerced {
		return core.SeverityWarning
	}
	return core.SeverityError
}

// Rules returns the rules behind the violated constraint.
func (v Violation) Rules() []core.RuleID {
	return v.Constraint.Rules()
}
